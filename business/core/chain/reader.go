package chain

import (
	"context"

	"github.com/memechain/minter/business/core/chain/db"
	"github.com/memechain/minter/foundation/genval"
)

// maxLogItemsPerCall is the page size for reading the external ledger's
// block log. A short page marks the end of the log.
const maxLogItemsPerCall = 1024

// readMintEvents pages through the external ledger's block log starting at
// the chain's cursor and collects every mint event recorded strictly before
// the cutoff. The cursor advances entry by entry, so a page cut short by the
// cutoff resumes exactly where it stopped on the next cycle. Call failures
// end the page loop early; the cursor then reflects only fully processed
// entries.
func (s *Service) readMintEvents(ctx context.Context, cutoff uint64, chain *db.Chain) []MintEvent {
	var events []MintEvent

	for {
		entries, err := s.nft.ReadLog(ctx, chain.NextLogCursor, maxLogItemsPerCall)
		if err != nil {
			s.ev("chain: readMintEvents: ERROR: reading log at cursor[%d]: %s", chain.NextLogCursor, err)
			break
		}

		if len(entries) > 0 {
			s.ev("chain: readMintEvents: analyzing %d log entries", len(entries))
		}

		reachedCutoff := false

		var ts uint64
		for _, entry := range entries {
			if v, ok := entry.Value.Field("ts"); ok {
				if n, ok := v.AsNat(); ok {
					ts = n
				}
			}

			// Nothing at or past the cutoff is considered. The entry stays
			// unconsumed for the next cycle.
			if ts >= cutoff {
				reachedCutoff = true
				break
			}

			if event, ok := decodeMintEvent(entry.Value); ok {
				s.ev("chain: readMintEvents: mint found: token[%d] to[%s]", event.TokenID, event.To)
				events = append(events, event)
			}

			chain.NextLogCursor = entry.ID + 1
		}

		if len(entries) < maxLogItemsPerCall || reachedCutoff {
			break
		}
	}

	return events
}

// decodeMintEvent extracts a mint event from a generic log entry. Any entry
// that is not a mint, or whose required fields are missing or malformed,
// reports false. A missing or malformed reactions field is not an error: the
// mint still counts with a zero reaction weight.
func decodeMintEvent(v genval.Value) (MintEvent, bool) {
	btype, ok := v.Field("btype")
	if !ok {
		return MintEvent{}, false
	}
	if text, ok := btype.AsText(); !ok || text != "7mint" {
		return MintEvent{}, false
	}

	tx, ok := v.Field("tx")
	if !ok {
		return MintEvent{}, false
	}

	tidValue, ok := tx.Field("tid")
	if !ok {
		return MintEvent{}, false
	}
	tokenID, ok := tidValue.AsNat()
	if !ok {
		return MintEvent{}, false
	}

	toValue, ok := tx.Field("to")
	if !ok {
		return MintEvent{}, false
	}
	to, ok := decodeAccount(toValue)
	if !ok {
		return MintEvent{}, false
	}

	var reactions uint64
	if meta, ok := tx.Field("meta"); ok {
		if v, ok := meta.Field("reactions"); ok {
			if n, ok := v.AsNat(); ok {
				reactions = n
			}
		}
	}

	return MintEvent{To: to, TokenID: tokenID, Reactions: reactions}, true
}

// decodeAccount extracts an account from a generic value holding an owner
// principal and an optional 32 byte sub-account blob.
func decodeAccount(v genval.Value) (db.Account, bool) {
	ownerValue, ok := v.Field("owner")
	if !ok {
		return db.Account{}, false
	}
	owner, ok := ownerValue.AsText()
	if !ok {
		return db.Account{}, false
	}

	account := db.Account{Owner: owner}

	// A missing or malformed sub-account means the default sub-account.
	if subValue, ok := v.Field("subaccount"); ok {
		if blob, ok := subValue.AsBlob(); ok && len(blob) == len(account.SubAccount) {
			copy(account.SubAccount[:], blob)
		}
	}

	return account, true
}
