package engine

import (
	"fmt"

	"TradeSentinel/internal/model"
)

// InvestorMode selects which consecutive-buying conditions the gate requires.
type InvestorMode string

const (
	InvestorNone        InvestorMode = "none"
	InvestorForeignOnly InvestorMode = "foreign_only"
	InvestorInstitution InvestorMode = "institution_only"
	InvestorBoth        InvestorMode = "both"
	InvestorEither      InvestorMode = "either"
)

// Valid reports whether m is a recognized mode.
func (m InvestorMode) Valid() bool {
	switch m {
	case InvestorNone, InvestorForeignOnly, InvestorInstitution, InvestorBoth, InvestorEither:
		return true
	}
	return false
}

// Gate is the conjunction of signal conditions required before a buy is considered.
type Gate struct {
	BelowMA20              bool
	VolumeSufficient       bool
	AboveBollingerLower    bool
	TradingValueSufficient bool
	Investor               InvestorMode
}

// DefaultGate requires the price conditions and at least one investor class buying.
func DefaultGate() Gate {
	return Gate{
		BelowMA20:           true,
		VolumeSufficient:    true,
		AboveBollingerLower: true,
		Investor:            InvestorEither,
	}
}

// Check returns whether sig passes the gate and the names of the failed conditions.
func (g Gate) Check(sig *model.SignalResult) (bool, []string) {
	var failed []string
	if sig.Outcome == model.OutcomeInsufficientData {
		return false, []string{"insufficient_data"}
	}
	if g.BelowMA20 && !sig.BelowMA20 {
		failed = append(failed, "below_ma20")
	}
	if g.VolumeSufficient && !sig.VolumeSufficient {
		failed = append(failed, "volume_sufficient")
	}
	if g.AboveBollingerLower && !sig.AboveBollingerLower {
		failed = append(failed, "above_bollinger_lower")
	}
	if g.TradingValueSufficient && !sig.TradingValueSufficient {
		failed = append(failed, "trading_value_sufficient")
	}

	foreign, inst := sig.ForeignConsecutiveBuy, sig.InstitutionConsecutiveBuy
	switch g.Investor {
	case InvestorForeignOnly:
		if !foreign {
			failed = append(failed, "foreign_consecutive_buy")
		}
	case InvestorInstitution:
		if !inst {
			failed = append(failed, "institution_consecutive_buy")
		}
	case InvestorBoth:
		if !foreign || !inst {
			failed = append(failed, "foreign_and_institution_consecutive_buy")
		}
	case InvestorEither:
		if !foreign && !inst {
			failed = append(failed, "investor_consecutive_buy")
		}
	}
	return len(failed) == 0, failed
}

// String describes the required conditions.
func (g Gate) String() string {
	return fmt.Sprintf("below_ma20=%t volume=%t bollinger=%t trading_value=%t investor=%s",
		g.BelowMA20, g.VolumeSufficient, g.AboveBollingerLower, g.TradingValueSufficient, g.Investor)
}
