package directline

// Activity is an opaque message-like record exchanged between a user and a
// bot. The engine inspects only a handful of well-known fields (type, the
// nested conversation id, the nested sender id); everything else passes
// through unexamined. A plain JSON object models that naturally without
// risking the lossy round-trip a fixed struct would incur on fields the
// engine itself never needed to know about.
type Activity map[string]any

// Type returns the activity's "type" field, or "" if absent or not a string.
func (a Activity) Type() string {
	return stringField(a, "type")
}

// ConversationID returns the activity's "conversation.id" field, or "" if
// the activity carries no conversation object or no id within it.
func (a Activity) ConversationID() string {
	return nestedStringField(a, "conversation", "id")
}

// FromID returns the activity's "from.id" field, or "" if absent.
func (a Activity) FromID() string {
	return nestedStringField(a, "from", "id")
}

// NewActivity builds an Activity of the given type, merging in the supplied
// fields. It is a convenience for constructing the user activity passed to
// Engine.ExecuteTurn / TurnHandle.Execute.
func NewActivity(activityType string, fields map[string]any) Activity {
	a := make(Activity, len(fields)+1)
	for k, v := range fields {
		a[k] = v
	}
	a["type"] = activityType
	return a
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func nestedStringField(m map[string]any, outer, inner string) string {
	v, ok := m[outer]
	if !ok {
		return ""
	}
	nested, ok := v.(map[string]any)
	if !ok {
		return ""
	}
	return stringField(nested, inner)
}
