package notification

import (
	"github.com/invopop/jsonschema"
)

// Schema returns the JSON schema of every modelled payload variant, keyed by notification type
func Schema() map[Type]*jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}

	variants := map[Type]any{
		TypeCardPlayed:       new(CardPlayedPayload),
		TypeAttackDeclared:   new(AttackPayload),
		TypeAttackRedirected: new(AttackPayload),
		TypeBattleResolved:   new(BattleResolvedPayload),
		TypeStatModified:     new(StatModifiedPayload),
		TypeTargetChoice:     new(TargetChoicePayload),
	}

	out := make(map[Type]*jsonschema.Schema, len(variants))
	for t, v := range variants {
		s := reflector.Reflect(v)
		s.Title = string(t)
		s.Description = "Payload of " + string(t) + " notifications; every field is optional"
		out[t] = s
	}
	return out
}
