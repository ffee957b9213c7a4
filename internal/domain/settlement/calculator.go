package settlement

import (
	"sort"

	"github.com/erp/realestate/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MemberSpend is what one group member actually paid within the settlement scope
type MemberSpend struct {
	PartnerID uuid.UUID
	Percent   decimal.Decimal
	Actual    valueobject.Money
}

// Position is a member's standing against its expected share of the total
type Position struct {
	PartnerID  uuid.UUID         `json:"partner_id"`
	Percent    decimal.Decimal   `json:"percent"`
	Actual     valueobject.Money `json:"actual"`
	Expected   valueobject.Money `json:"expected"`
	Difference valueobject.Money `json:"difference"`
}

// IsCreditor reports whether the member paid more than its share
func (p Position) IsCreditor() bool {
	return p.Difference.IsPositive()
}

// IsDebtor reports whether the member paid less than its share
func (p Position) IsDebtor() bool {
	return p.Difference.IsNegative()
}

// Transfer moves money from a debtor to a creditor
type Transfer struct {
	FromPartnerID uuid.UUID         `json:"from_partner_id"`
	ToPartnerID   uuid.UUID         `json:"to_partner_id"`
	Amount        valueobject.Money `json:"amount"`
}

// Result is the outcome of a settlement calculation
type Result struct {
	Total     valueobject.Money
	Positions []Position
	Transfers []Transfer
}

// Calculate computes each member's position and the transfers that even them out.
//
// expected = percent/100 × total spend, difference = actual - expected.
// Creditors (difference > 0) and debtors (difference < 0) are both ordered by
// magnitude, largest first, and matched greedily: each step moves
// min(credit, debt) from the current debtor to the current creditor.
func Calculate(spends []MemberSpend) Result {
	total := valueobject.Zero()
	for _, s := range spends {
		total = total.Add(s.Actual)
	}

	positions := make([]Position, 0, len(spends))
	for _, s := range spends {
		pct, err := valueobject.NewPercentage(s.Percent)
		if err != nil {
			pct = valueobject.Percentage{}
		}
		expected := pct.Of(total)
		positions = append(positions, Position{
			PartnerID:  s.PartnerID,
			Percent:    s.Percent,
			Actual:     s.Actual,
			Expected:   expected,
			Difference: s.Actual.Sub(expected),
		})
	}

	return Result{
		Total:     total,
		Positions: positions,
		Transfers: matchTransfers(positions),
	}
}

type balanceLine struct {
	partnerID uuid.UUID
	amount    valueobject.Money
}

func matchTransfers(positions []Position) []Transfer {
	var creditors, debtors []balanceLine
	for _, p := range positions {
		switch {
		case p.IsCreditor():
			creditors = append(creditors, balanceLine{p.PartnerID, p.Difference})
		case p.IsDebtor():
			debtors = append(debtors, balanceLine{p.PartnerID, p.Difference.Negate()})
		}
	}
	byMagnitude := func(lines []balanceLine) {
		sort.SliceStable(lines, func(a, b int) bool {
			if !lines[a].amount.Equal(lines[b].amount) {
				return lines[a].amount.GreaterThan(lines[b].amount)
			}
			return lines[a].partnerID.String() < lines[b].partnerID.String()
		})
	}
	byMagnitude(creditors)
	byMagnitude(debtors)

	var transfers []Transfer
	i, j := 0, 0
	for i < len(creditors) && j < len(debtors) {
		amount := creditors[i].amount.Min(debtors[j].amount)
		if amount.IsPositive() {
			transfers = append(transfers, Transfer{
				FromPartnerID: debtors[j].partnerID,
				ToPartnerID:   creditors[i].partnerID,
				Amount:        amount,
			})
		}
		creditors[i].amount = creditors[i].amount.Sub(amount)
		debtors[j].amount = debtors[j].amount.Sub(amount)
		if !creditors[i].amount.IsPositive() {
			i++
		}
		if !debtors[j].amount.IsPositive() {
			j++
		}
	}
	return transfers
}

// ApplyTransfers returns the positions after the transfers are executed.
// A debtor that pays gains actual spend; a creditor that receives loses it.
func ApplyTransfers(positions []Position, transfers []Transfer) []Position {
	out := make([]Position, len(positions))
	copy(out, positions)
	index := make(map[uuid.UUID]int, len(out))
	for i, p := range out {
		index[p.PartnerID] = i
	}
	for _, t := range transfers {
		if i, ok := index[t.FromPartnerID]; ok {
			out[i].Actual = out[i].Actual.Add(t.Amount)
			out[i].Difference = out[i].Difference.Add(t.Amount)
		}
		if i, ok := index[t.ToPartnerID]; ok {
			out[i].Actual = out[i].Actual.Sub(t.Amount)
			out[i].Difference = out[i].Difference.Sub(t.Amount)
		}
	}
	return out
}
