package chain

import (
	"context"
	"math/rand/v2"
	"sort"

	"github.com/memechain/minter/business/core/chain/db"
)

// Attribution parameters. Owner and metadata lookups are chunked to respect
// the external ledger's per-call id limit; the raffle samples a bounded
// number of tokens regardless of collection size.
const (
	maxIDsPerQuery         = 100
	defaultMaxRaffleOwners = 10
)

// payout is one attributed share of the distributable pool, expressed as a
// percentage in e8s so rounding happens once, against the final pool.
type payout struct {
	to     db.Account
	reason db.MintReason
	pct    uint64
}

// candidate aggregates the mint events of a single account within the
// cycle's window.
type candidate struct {
	account    db.Account
	tokens     []uint64
	reactions  uint64
	firstToken uint64
}

// =============================================================================

// attributeMinters decides the direct-mode payouts: the cycle's minters are
// ranked by total reactions descending (ties broken by ascending token id so
// the ranking never depends on map iteration order) and the top ranks are
// paid their reward tier percentage. Candidates below the paid tiers receive
// nothing.
func (s *Service) attributeMinters(ctx context.Context, events []MintEvent) []payout {
	byAccount := make(map[db.Account]*candidate)
	order := make([]db.Account, 0, len(events))

	for _, event := range events {
		c, exists := byAccount[event.To]
		if !exists {
			c = &candidate{account: event.To, firstToken: event.TokenID}
			byAccount[event.To] = c
			order = append(order, event.To)
		}

		c.tokens = append(c.tokens, event.TokenID)
		c.reactions += event.Reactions
		if event.TokenID < c.firstToken {
			c.firstToken = event.TokenID
		}
	}

	candidates := make([]*candidate, 0, len(order))
	for _, account := range order {
		candidates = append(candidates, byAccount[account])
	}

	// Reaction counts keep accruing after the mint is logged, so refresh
	// them from current metadata before ranking. Lookup failures keep the
	// counts the log reported.
	s.refreshReactions(ctx, candidates)

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].reactions != candidates[j].reactions {
			return candidates[i].reactions > candidates[j].reactions
		}
		return candidates[i].firstToken < candidates[j].firstToken
	})

	if len(candidates) > len(s.rewardTiers) {
		candidates = candidates[:len(s.rewardTiers)]
	}

	payouts := make([]payout, 0, len(candidates))
	for i, c := range candidates {
		payouts = append(payouts, payout{
			to:     c.account,
			reason: db.MintReason{Kind: db.ReasonNftMinter, Tokens: c.tokens},
			pct:    s.rewardTiers[i],
		})
	}

	return payouts
}

// refreshReactions re-reads the reaction counts of every candidate token
// from the collection's metadata. Each chunk failure is logged and leaves
// that chunk's tokens at their log-derived counts.
func (s *Service) refreshReactions(ctx context.Context, candidates []*candidate) {
	var tokenIDs []uint64
	for _, c := range candidates {
		tokenIDs = append(tokenIDs, c.tokens...)
	}

	current := make(map[uint64]uint64)

	for start := 0; start < len(tokenIDs); start += maxIDsPerQuery {
		end := min(start+maxIDsPerQuery, len(tokenIDs))
		chunk := tokenIDs[start:end]

		metas, err := s.nft.MetadataOf(ctx, chunk)
		if err != nil {
			s.ev("chain: refreshReactions: ERROR: metadata lookup: %s", err)
			continue
		}

		for i, meta := range metas {
			if meta == nil || i >= len(chunk) {
				continue
			}
			if v, ok := meta["reactions"]; ok {
				if n, ok := v.AsNat(); ok {
					current[chunk[i]] = n
				}
			}
		}
	}

	if len(current) == 0 {
		return
	}

	for _, c := range candidates {
		var reactions uint64
		refreshed := false
		for _, token := range c.tokens {
			if n, ok := current[token]; ok {
				reactions += n
				refreshed = true
			}
		}
		if refreshed {
			c.reactions = reactions
		}
	}
}

// =============================================================================

// attributeRaffle decides the fallback payouts for a cycle with no mints:
// sample a bounded number of token ids uniformly without replacement from
// the collection and pay their current owners an even split of the pool.
// Zero supply, or lookups that all fail, produce no winners; the cycle still
// proceeds with only fee lines.
func (s *Service) attributeRaffle(ctx context.Context) []payout {
	supply, err := s.nft.TotalSupply(ctx)
	if err != nil {
		s.ev("chain: attributeRaffle: ERROR: total supply: %s", err)
		return nil
	}

	if supply == 0 {
		s.ev("chain: attributeRaffle: empty collection, no winners")
		return nil
	}

	draws := uint64(s.maxRaffleOwners)
	if supply < draws {
		draws = supply
	}

	// Token ids are 1-based and dense, so sampling ids directly samples the
	// collection.
	drawn := make(map[uint64]struct{}, draws)
	tokenIDs := make([]uint64, 0, draws)
	for uint64(len(tokenIDs)) < draws {
		id := rand.Uint64N(supply) + 1
		if _, exists := drawn[id]; exists {
			continue
		}
		drawn[id] = struct{}{}
		tokenIDs = append(tokenIDs, id)
	}

	// One owner can hold several drawn tokens; dedupe so each account wins
	// at most once.
	seen := make(map[db.Account]struct{})
	var winners []db.Account

	for start := 0; start < len(tokenIDs); start += maxIDsPerQuery {
		end := min(start+maxIDsPerQuery, len(tokenIDs))
		chunk := tokenIDs[start:end]

		owners, err := s.nft.OwnersOf(ctx, chunk)
		if err != nil {
			s.ev("chain: attributeRaffle: ERROR: owner lookup: %s", err)
			continue
		}

		for _, owner := range owners {
			if owner == nil {
				continue
			}
			if _, exists := seen[*owner]; exists {
				continue
			}
			seen[*owner] = struct{}{}
			winners = append(winners, *owner)
		}
	}

	if len(winners) == 0 {
		return nil
	}

	share := uint64(100_000_000) / uint64(len(winners))

	payouts := make([]payout, 0, len(winners))
	for _, winner := range winners {
		payouts = append(payouts, payout{
			to:     winner,
			reason: db.MintReason{Kind: db.ReasonRaffleWinner},
			pct:    share,
		})
	}

	return payouts
}
