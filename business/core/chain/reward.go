package chain

// Default protocol parameters. The halving schedule follows the bitcoin
// curve but runs 5x faster: the reward halves every 288 days of block time.
const (
	InitBlockReward   uint64 = 50_00000000
	BlockTimeSeconds  uint64 = 60 * 15
	SecondsPerHalving uint64 = 60 * 60 * 24 * 288
	BlocksPerHalving  uint64 = SecondsPerHalving / BlockTimeSeconds
)

// Reward returns the block reward the chain is entitled to distribute at the
// specified height. The reward halves by integer right shift every halving
// interval and reaches zero once the shift exhausts the word, which is the
// expected terminal behavior of the curve.
func (s *Service) Reward(height uint32) uint64 {
	return s.initReward >> (uint64(height) / s.blocksPerHalving)
}
