package drive

import (
	"context"
	"fmt"

	"github.com/evoplatform/v1/pkg/types"
)

// applyBatch 按序应用批内子动作，并逐个推进（身份，合约）nonce
func (d *Drive) applyBatch(ctx context.Context, a *types.BatchAction, block *types.BlockInfo) error {
	for _, sub := range a.SubActions {
		switch s := sub.(type) {
		case *types.DocumentCreateAction:
			if err := d.applyDocumentCreate(ctx, s); err != nil {
				return err
			}
			if err := d.setCounter(keyContractNonce(a.Owner, s.Contract.ID()), s.Nonce); err != nil {
				return err
			}
		case *types.DocumentReplaceAction:
			if err := d.applyDocumentReplace(ctx, s); err != nil {
				return err
			}
			if err := d.setCounter(keyContractNonce(a.Owner, s.Contract.ID()), s.Nonce); err != nil {
				return err
			}
		case *types.DocumentDeleteAction:
			if err := d.applyDocumentDelete(ctx, s); err != nil {
				return err
			}
			if err := d.setCounter(keyContractNonce(a.Owner, s.Contract.ID()), s.Nonce); err != nil {
				return err
			}
		case *types.DocumentTransferAction:
			if err := d.applyDocumentTransfer(ctx, s, block); err != nil {
				return err
			}
			if err := d.setCounter(keyContractNonce(a.Owner, s.Contract.ID()), s.Nonce); err != nil {
				return err
			}
		case *types.DocumentPurchaseAction:
			if err := d.applyDocumentPurchase(ctx, a.Owner, s, block); err != nil {
				return err
			}
			if err := d.setCounter(keyContractNonce(a.Owner, s.Contract.ID()), s.Nonce); err != nil {
				return err
			}
		case *types.DocumentUpdatePriceAction:
			if err := d.applyDocumentUpdatePrice(ctx, s, block); err != nil {
				return err
			}
			if err := d.setCounter(keyContractNonce(a.Owner, s.Contract.ID()), s.Nonce); err != nil {
				return err
			}
		case *types.TokenAction:
			if err := d.applyToken(ctx, a.Owner, s, block); err != nil {
				return err
			}
			if err := d.setCounter(keyContractNonce(a.Owner, s.Contract.ID()), s.Nonce); err != nil {
				return err
			}
		default:
			return &types.ProtocolError{
				Reason: types.ProtocolFaultUnknown,
				Op:     "drive.applyBatch",
				Err:    fmt.Errorf("未知子动作类型 %T", sub),
			}
		}
	}
	return nil
}

func (d *Drive) applyDocumentCreate(ctx context.Context, a *types.DocumentCreateAction) error {
	docID := a.Document.ID()
	if err := d.store.Set(keyDocument(a.Contract.ID(), a.TypeName, docID), a.Document.Serialize()); err != nil {
		return fmt.Errorf("写入文档: %w", err)
	}

	docType, ok := a.Contract.DocumentType(a.TypeName)
	if !ok {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultContractLookup,
			Op:     "drive.applyDocumentCreate",
			Err:    fmt.Errorf("文档类型缺失: %s", a.TypeName),
		}
	}

	// 非竞争唯一索引立即登记；竞争索引待议题裁决后登记胜者
	if err := d.putUniqueIndexEntries(a.Contract.ID(), a.TypeName, docType, a.Document, false); err != nil {
		return err
	}

	if a.ContestedPoll != nil {
		return d.registerContender(ctx, a.ContestedPoll, a.Document.OwnerID(), docID)
	}
	return nil
}

// registerContender 开启（或加入）争用议题
func (d *Drive) registerContender(ctx context.Context, poll *types.ContestedResourceVotePoll, owner, docID types.Identifier) error {
	pollID := poll.PollID()
	state, err := d.FetchVotePollState(ctx, pollID)
	if err != nil {
		return err
	}
	if state == nil {
		state = types.NewVotePollStateV0(*poll)
	}
	state.AddContender(owner, docID)
	if err := d.store.Set(keyVotePoll(pollID), state.Serialize()); err != nil {
		return fmt.Errorf("写入议题状态: %w", err)
	}
	return nil
}

func (d *Drive) applyDocumentReplace(ctx context.Context, a *types.DocumentReplaceAction) error {
	docType, ok := a.Contract.DocumentType(a.TypeName)
	if !ok {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultContractLookup,
			Op:     "drive.applyDocumentReplace",
			Err:    fmt.Errorf("文档类型缺失: %s", a.TypeName),
		}
	}

	docID := a.Document.ID()
	previous, err := d.FetchDocument(ctx, a.Contract.ID(), a.TypeName, docID)
	if err != nil {
		return err
	}
	if previous != nil {
		if err := d.deleteUniqueIndexEntries(a.Contract.ID(), a.TypeName, docType, previous, false); err != nil {
			return err
		}
	}

	if err := d.store.Set(keyDocument(a.Contract.ID(), a.TypeName, docID), a.Document.Serialize()); err != nil {
		return fmt.Errorf("写入文档: %w", err)
	}
	return d.putUniqueIndexEntries(a.Contract.ID(), a.TypeName, docType, a.Document, false)
}

func (d *Drive) applyDocumentDelete(ctx context.Context, a *types.DocumentDeleteAction) error {
	docType, ok := a.Contract.DocumentType(a.TypeName)
	if !ok {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultContractLookup,
			Op:     "drive.applyDocumentDelete",
			Err:    fmt.Errorf("文档类型缺失: %s", a.TypeName),
		}
	}

	document, err := d.FetchDocument(ctx, a.Contract.ID(), a.TypeName, a.DocumentID)
	if err != nil {
		return err
	}
	if document != nil {
		// 竞争索引条目一并清理：胜者文档裁决后持有该条目
		if err := d.deleteUniqueIndexEntries(a.Contract.ID(), a.TypeName, docType, document, true); err != nil {
			return err
		}
	}
	return d.store.Delete(keyDocument(a.Contract.ID(), a.TypeName, a.DocumentID))
}

func (d *Drive) applyDocumentTransfer(ctx context.Context, a *types.DocumentTransferAction, block *types.BlockInfo) error {
	return d.mutateDocument(ctx, a.Contract.ID(), a.TypeName, a.DocumentID, "drive.applyDocumentTransfer", func(document *types.Document) {
		document.SetOwnerID(a.RecipientOwner)
		document.SetRevision(a.Revision)
		document.SetUpdatedAt(block.TimeMillis)
		// 转移后挂牌价失效
		document.SetPrice(nil)
	})
}

func (d *Drive) applyDocumentPurchase(ctx context.Context, buyer types.Identifier, a *types.DocumentPurchaseAction, block *types.BlockInfo) error {
	document, err := d.FetchDocument(ctx, a.Contract.ID(), a.TypeName, a.DocumentID)
	if err != nil {
		return err
	}
	if document == nil {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     "drive.applyDocumentPurchase",
			Err:    fmt.Errorf("文档缺失: %s", a.DocumentID),
		}
	}

	seller := document.OwnerID()
	if err := d.moveCredits(ctx, buyer, seller, a.Price, "drive.applyDocumentPurchase"); err != nil {
		return err
	}

	document.SetOwnerID(buyer)
	document.SetRevision(a.Revision)
	document.SetUpdatedAt(block.TimeMillis)
	document.SetPrice(nil)
	if err := d.store.Set(keyDocument(a.Contract.ID(), a.TypeName, a.DocumentID), document.Serialize()); err != nil {
		return fmt.Errorf("写入文档: %w", err)
	}
	return nil
}

func (d *Drive) applyDocumentUpdatePrice(ctx context.Context, a *types.DocumentUpdatePriceAction, block *types.BlockInfo) error {
	price := a.Price
	return d.mutateDocument(ctx, a.Contract.ID(), a.TypeName, a.DocumentID, "drive.applyDocumentUpdatePrice", func(document *types.Document) {
		document.SetPrice(&price)
		document.SetRevision(a.Revision)
		document.SetUpdatedAt(block.TimeMillis)
	})
}

func (d *Drive) mutateDocument(ctx context.Context, contractID types.Identifier, typeName string, documentID types.Identifier, op string, fn func(*types.Document)) error {
	document, err := d.FetchDocument(ctx, contractID, typeName, documentID)
	if err != nil {
		return err
	}
	if document == nil {
		return &types.ProtocolError{
			Reason: types.ProtocolFaultCorruptedState,
			Op:     op,
			Err:    fmt.Errorf("文档缺失: %s", documentID),
		}
	}
	fn(document)
	if err := d.store.Set(keyDocument(contractID, typeName, documentID), document.Serialize()); err != nil {
		return fmt.Errorf("写入文档: %w", err)
	}
	return nil
}

// ==================== 唯一索引维护 ====================

// uniqueIndexEntries 按文档当前属性提取各唯一索引的索引键
//
// 取值不全的索引跳过（与校验层的「全缺跳过」语义一致；「部分缺失」
// 在校验层已拒绝，不会走到这里）。
func uniqueIndexEntries(contractID types.Identifier, typeName string, docType *types.DocumentType, document *types.Document, includeContested bool) [][]byte {
	var keys [][]byte
	for _, idx := range docType.UniqueIndices() {
		if idx.Contested != nil && !includeContested {
			continue
		}
		values := make([]types.Value, 0, len(idx.Properties))
		complete := true
		for _, prop := range idx.Properties {
			v, ok := document.Property(prop.Field)
			if !ok {
				complete = false
				break
			}
			values = append(values, v)
		}
		if !complete {
			continue
		}
		keys = append(keys, keyUniqueIndex(contractID, typeName, idx.Name, values))
	}
	return keys
}

func (d *Drive) putUniqueIndexEntries(contractID types.Identifier, typeName string, docType *types.DocumentType, document *types.Document, includeContested bool) error {
	docID := document.ID()
	for _, key := range uniqueIndexEntries(contractID, typeName, docType, document, includeContested) {
		if err := d.store.Set(key, docID[:]); err != nil {
			return fmt.Errorf("写入唯一索引: %w", err)
		}
	}
	return nil
}

func (d *Drive) deleteUniqueIndexEntries(contractID types.Identifier, typeName string, docType *types.DocumentType, document *types.Document, includeContested bool) error {
	for _, key := range uniqueIndexEntries(contractID, typeName, docType, document, includeContested) {
		if err := d.store.Delete(key); err != nil {
			return fmt.Errorf("删除唯一索引: %w", err)
		}
	}
	return nil
}
