package analysis

import (
	"sort"
	"strings"

	"github.com/sashabaranov/go-openai/jsonschema"

	"github.com/gitgraph/year-in-code/internal/apperrors"
	"github.com/gitgraph/year-in-code/internal/types"
)

// profileSchema is the single structured-output definition shared by request
// construction and response validation. Keeping one definition is what stops
// the two from drifting apart.
var profileSchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"summary":   {Type: jsonschema.String},
		"archetype": {Type: jsonschema.String},
		"skills": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"name":       {Type: jsonschema.String},
					"category":   {Type: jsonschema.String, Enum: types.SkillCategories},
					"usageScore": {Type: jsonschema.Number},
				},
				Required: []string{"name", "category", "usageScore"},
			},
		},
		"topLanguages": {
			Type: jsonschema.Array,
			Items: &jsonschema.Definition{
				Type: jsonschema.Object,
				Properties: map[string]jsonschema.Definition{
					"name":       {Type: jsonschema.String},
					"percentage": {Type: jsonschema.Number},
				},
				Required: []string{"name", "percentage"},
			},
		},
	},
	Required: []string{"summary", "archetype", "skills", "topLanguages"},
}

// ProfileSchema returns the shared structured-output schema.
func ProfileSchema() jsonschema.Definition {
	return profileSchema
}

// DecodeProfile validates raw against the shared schema and returns the
// resulting profile with skills re-sorted by usage score, descending. Stable
// sort: ties keep the model-provided order.
//
// Missing, empty, or nonconformant bodies fail with an analysis error; no
// defaults are fabricated.
func DecodeProfile(raw []byte) (*types.DeveloperProfile, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, apperrors.NewAnalysis("the model returned an empty response", nil)
	}

	var profile types.DeveloperProfile
	if err := jsonschema.VerifySchemaAndUnmarshal(profileSchema, raw, &profile); err != nil {
		return nil, apperrors.NewAnalysis("the model response did not match the expected schema", err)
	}

	for _, s := range profile.Skills {
		if !s.Category.Valid() {
			return nil, apperrors.NewAnalysis("the model returned an unknown skill category: "+string(s.Category), nil)
		}
	}

	// Correctness safeguard independent of model ordering. Percentages in
	// topLanguages are passed through unverified, matching the upstream
	// contract.
	sort.SliceStable(profile.Skills, func(i, j int) bool {
		return profile.Skills[i].UsageScore > profile.Skills[j].UsageScore
	})

	return &profile, nil
}
