// Package fridge answers how much icecream is left at a given hour.
package fridge

// Scoops left before and after the 22:00 raid.
const (
	FullScoops  uint16 = 5
	EmptyScoops uint16 = 0
)

// MaybeIcecream reports the scoops left at hourOfDay on a 24-hour clock.
// Before 22:00 there are 5; from 22:00 someone has eaten them all. Hours past
// 23 are not on the clock and report ok == false.
func MaybeIcecream(hourOfDay uint16) (scoops uint16, ok bool) {
	switch {
	case hourOfDay > 23:
		return 0, false
	case hourOfDay >= 22:
		return EmptyScoops, true
	default:
		return FullScoops, true
	}
}
