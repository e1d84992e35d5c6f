package drive

import (
	"errors"
	"os"

	badgerdb "github.com/dgraph-io/badger/v3"

	logInterface "github.com/evoplatform/v1/pkg/interfaces/infrastructure/log"
)

// badgerStore Badger 持久化后端
//
// 平台状态键短值小，关闭 value log 分离（全部走 LSM）换取读路径
// 少一次寻址。Badger 迭代器本身按键字节序升序，满足 store 契约。
type badgerStore struct {
	db     *badgerdb.DB
	logger logInterface.Logger
}

var _ store = (*badgerStore)(nil)

func newBadgerStore(dataDir string, logger logInterface.Logger) (*badgerStore, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		logger.Errorf("无法创建平台状态库目录: %v", err)
		return nil, err
	}

	opts := badgerdb.DefaultOptions(dataDir)
	opts.SyncWrites = true
	opts.ValueThreshold = 1 << 20 // 小值全部进 LSM
	opts.Logger = nil

	db, err := badgerdb.Open(opts)
	if err != nil {
		logger.Errorf("打开平台状态库失败: dir=%s err=%v", dataDir, err)
		return nil, err
	}

	logger.Infof("平台状态库就绪: dir=%s", dataDir)
	return &badgerStore{db: db, logger: logger}, nil
}

func (s *badgerStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badgerdb.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badgerdb.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *badgerStore) Set(key, value []byte) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *badgerStore) Delete(key []byte) error {
	return s.db.Update(func(txn *badgerdb.Txn) error {
		return txn.Delete(key)
	})
}

func (s *badgerStore) Scan(prefix []byte, fn func(key, value []byte) error) error {
	return s.db.View(func(txn *badgerdb.Txn) error {
		opts := badgerdb.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), value); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}
