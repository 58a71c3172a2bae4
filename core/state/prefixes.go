package state

var (
	stakingDepositorPrefix = []byte("staking/depositor/")
	stakingAddressListKey  = []byte("staking/addresses")
	stakingActiveListKey   = []byte("staking/active")
	stakingProgramKey      = []byte("staking/program")
)
