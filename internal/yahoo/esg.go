package yahoo

import (
	"context"

	"yfgo/client"
)

// EsgInvolvement mirrors original_source's esg::model::EsgInvolvement: flags
// for controversial-sector involvement.
type EsgInvolvement struct {
	Adult                bool
	Alcoholic            bool
	AnimalTesting        bool
	Catholic             bool
	ControversialWeapons bool
	SmallArms            bool
	FurLeather           bool
	Gambling             bool
	GMO                  bool
	MilitaryContract     bool
	Nuclear              bool
	PalmOil              bool
	Pesticides           bool
	ThermalCoal          bool
	Tobacco              bool
}

// EsgScores mirrors original_source's esg::model::EsgScores.
type EsgScores struct {
	TotalESG           *float64
	EnvironmentScore   *float64
	SocialScore        *float64
	GovernanceScore    *float64
	EsgPercentile      *float64
	HighestControversy *uint32
	Involvement        EsgInvolvement
}

// FetchESGScores implements the "esgScores" slice of C17's fan-out.
func FetchESGScores(ctx context.Context, c *client.Client, symbol string) (EsgScores, error) {
	result, err := FetchQuoteSummary(ctx, c, symbol, []string{"esgScores"})
	if err != nil {
		return EsgScores{}, err
	}
	esg, ok := result["esgScores"].(map[string]interface{})
	if !ok {
		return EsgScores{}, nil
	}

	scores := EsgScores{
		TotalESG:         rawNumField(esg, "totalEsg"),
		EnvironmentScore: rawNumField(esg, "environmentScore"),
		SocialScore:      rawNumField(esg, "socialScore"),
		GovernanceScore:  rawNumField(esg, "governanceScore"),
		Involvement: EsgInvolvement{
			Adult:                boolField(esg, "adult"),
			Alcoholic:            boolField(esg, "alcoholic"),
			AnimalTesting:        boolField(esg, "animalTesting"),
			Catholic:             boolField(esg, "catholic"),
			ControversialWeapons: boolField(esg, "controversialWeapons"),
			SmallArms:            boolField(esg, "smallArms"),
			FurLeather:           boolField(esg, "furLeather"),
			Gambling:             boolField(esg, "gambling"),
			GMO:                  boolField(esg, "gmo"),
			MilitaryContract:     boolField(esg, "militaryContract"),
			Nuclear:              boolField(esg, "nuclear"),
			PalmOil:              boolField(esg, "palmOil"),
			Pesticides:           boolField(esg, "pesticides"),
			ThermalCoal:          boolField(esg, "coal"),
			Tobacco:              boolField(esg, "tobacco"),
		},
	}

	if pct, ok := esg["percentile"].(float64); ok {
		scores.EsgPercentile = &pct
	}
	if hc, ok := esg["highestControversy"].(float64); ok {
		u := uint32(hc)
		scores.HighestControversy = &u
	}

	return scores, nil
}

func boolField(m map[string]interface{}, key string) bool {
	v, _ := m[key].(bool)
	return v
}
