//go:build !race

package backoffice

func passwordHashCost() int {
	return DefaultHashCost
}
