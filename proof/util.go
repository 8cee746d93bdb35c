package proof

import "math/big"

func bigFromInt(i int) *big.Int {
	return big.NewInt(int64(i))
}
