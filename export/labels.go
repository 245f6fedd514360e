package export

import "fmt"

// SideBiasLabel renders a side balance for display: "Corp +2", "Runner +1"
// or "Balanced".
func SideBiasLabel(balance int) string {
	switch {
	case balance > 0:
		return fmt.Sprintf("Corp +%d", balance)
	case balance < 0:
		return fmt.Sprintf("Runner +%d", -balance)
	default:
		return "Balanced"
	}
}
