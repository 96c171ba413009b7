// Package ranks is the static rank ladder: pair thresholds, rewards, and
// per-rank benefits shown on the rewards and rank pages.
package ranks

import "strings"

// Tier is one rank on the ladder.
type Tier struct {
	Name     string
	Icon     string
	Pairs    int
	Reward   string
	Benefits []string
}

var ladder = []Tier{
	{Name: "Supervisor", Icon: "⭐", Pairs: 25, Reward: "Nil", Benefits: []string{
		"10% referral bonus", "Basic support access", "Monthly newsletter",
	}},
	{Name: "Senior Supervisor", Icon: "⭐⭐", Pairs: 50, Reward: "Goa Tour", Benefits: []string{
		"12% referral bonus", "5% matching bonus", "Priority support access", "Weekly training sessions",
	}},
	{Name: "Manager", Icon: "⭐⭐⭐", Pairs: 100, Reward: "₹40,000", Benefits: []string{
		"15% referral bonus", "8% matching bonus", "Generation bonus level 1", "Dedicated support manager", "Exclusive events access",
	}},
	{Name: "Executive Manager", Icon: "⭐⭐⭐⭐", Pairs: 250, Reward: "Thailand Tour", Benefits: []string{
		"18% referral bonus", "10% matching bonus", "Generation bonus level 2", "Trading profit share", "Luxury rewards program",
	}},
	{Name: "Eagle", Icon: "🦅", Pairs: 500, Reward: "₹1.8 Lakh", Benefits: []string{
		"20% referral bonus", "12% matching bonus", "Generation bonus level 3", "Higher trading profit share", "International conference access",
	}},
	{Name: "Eagle Executive", Icon: "🦅⭐", Pairs: 1000, Reward: "₹4 Lakh"},
	{Name: "Silver", Icon: "🥈", Pairs: 2500, Reward: "₹8 Lakh"},
	{Name: "Gold", Icon: "🥇", Pairs: 5000, Reward: "₹15 Lakh"},
	{Name: "Pearl", Icon: "💎", Pairs: 10000, Reward: "₹30 Lakh"},
	{Name: "Diamond", Icon: "💎💎", Pairs: 25000, Reward: "₹50 Lakh"},
	{Name: "Ambassador", Icon: "👑", Pairs: 50000, Reward: "₹75 Lakh"},
	{Name: "King", Icon: "👑👑", Pairs: 100000, Reward: "₹1.25 Cr"},
	{Name: "Universal King", Icon: "👑👑👑", Pairs: 250000, Reward: "₹2.25 Cr"},
}

// MatchingBonus describes the daily-capped matching payout.
const MatchingBonus = "10% on each matching, up to ₹43,200 per day"

// All returns the ladder from lowest to highest rank.
func All() []Tier {
	out := make([]Tier, len(ladder))
	copy(out, ladder)
	return out
}

// Lookup finds a tier by name, ignoring case and surrounding space.
func Lookup(name string) (Tier, bool) {
	name = strings.TrimSpace(name)
	for _, tier := range ladder {
		if strings.EqualFold(tier.Name, name) {
			return tier, true
		}
	}
	return Tier{}, false
}

// Next returns the tier after name. An unknown or empty name yields the first
// tier; the top tier has no successor.
func Next(name string) (Tier, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ladder[0], true
	}
	for i, tier := range ladder {
		if strings.EqualFold(tier.Name, name) {
			if i+1 < len(ladder) {
				return ladder[i+1], true
			}
			return Tier{}, false
		}
	}
	return ladder[0], true
}

// Requirement keys reported by the backend for next-rank progress.
const (
	RequirementDirectReferrals    = "directReferrals"
	RequirementTeamSize           = "teamSize"
	RequirementPersonalInvestment = "personalInvestment"
	RequirementTeamInvestment     = "teamInvestment"
	RequirementMonthlyIncome      = "monthlyIncome"
)

// RequirementKeys lists requirement keys in display order.
func RequirementKeys() []string {
	return []string{
		RequirementDirectReferrals,
		RequirementTeamSize,
		RequirementPersonalInvestment,
		RequirementTeamInvestment,
		RequirementMonthlyIncome,
	}
}

// IsMonetary reports whether a requirement is an amount in rupees.
func IsMonetary(key string) bool {
	switch key {
	case RequirementPersonalInvestment, RequirementTeamInvestment, RequirementMonthlyIncome:
		return true
	default:
		return false
	}
}

// Progress is one requirement's completion.
type Progress struct {
	Key      string
	Achieved float64
	Required float64
	Percent  int
	Band     string
}

// Band names the color band for a completion percentage.
func Band(percent int) string {
	switch {
	case percent >= 100:
		return "green"
	case percent >= 75:
		return "blue"
	case percent >= 50:
		return "yellow"
	default:
		return "red"
	}
}

// RequirementProgress computes per-requirement completion for the known keys
// present in required, in display order.
func RequirementProgress(required map[string]float64, achieved map[string]float64) []Progress {
	out := make([]Progress, 0, len(required))
	for _, key := range RequirementKeys() {
		need, ok := required[key]
		if !ok {
			continue
		}
		have := achieved[key]
		percent := 100
		if need > 0 {
			percent = int(min(have/need, 1) * 100)
		}
		out = append(out, Progress{Key: key, Achieved: have, Required: need, Percent: percent, Band: Band(percent)})
	}
	return out
}

// Overall returns the server-reported progress when present, otherwise the
// mean of the capped per-requirement ratios.
func Overall(reported *float64, items []Progress) int {
	if reported != nil {
		return clampPercent(int(*reported))
	}
	if len(items) == 0 {
		return 0
	}
	total := 0
	for _, item := range items {
		total += item.Percent
	}
	return clampPercent(total / len(items))
}

func clampPercent(percent int) int {
	return max(0, min(percent, 100))
}
