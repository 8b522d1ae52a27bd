//go:build !race

package authgate

func secretHashCost() int {
	return 14
}
