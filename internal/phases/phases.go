package phases

// Phase is one stage in the fixed delivery pipeline.
type Phase struct {
	Key        string
	Name       string
	OrderIndex int
}

// Keys for every delivery phase, in pipeline order.
const (
	Onboarding = "ONB"
	Ideation   = "IDEA"
	Design     = "DSGN"
	Review     = "REV"
	Production = "PROD"
	Payment    = "PAY"
	SignOff    = "SIGN"
	Launch     = "LAUNCH"
)

// registry is the single ordered phase table. Both the requirement gate and
// the transition engine read from here; the order index of an entry is its
// position in this slice.
var registry = []Phase{
	{Key: Onboarding, Name: "Onboarding", OrderIndex: 0},
	{Key: Ideation, Name: "Ideation", OrderIndex: 1},
	{Key: Design, Name: "Design", OrderIndex: 2},
	{Key: Review, Name: "Review", OrderIndex: 3},
	{Key: Production, Name: "Production", OrderIndex: 4},
	{Key: Payment, Name: "Payment", OrderIndex: 5},
	{Key: SignOff, Name: "Sign-off", OrderIndex: 6},
	{Key: Launch, Name: "Launch", OrderIndex: 7},
}

var byKey = func() map[string]Phase {
	m := make(map[string]Phase, len(registry))
	for _, p := range registry {
		m[p.Key] = p
	}
	return m
}()

// All returns every phase in pipeline order.
func All() []Phase {
	out := make([]Phase, len(registry))
	copy(out, registry)
	return out
}

// Get looks up a phase by key.
func Get(key string) (Phase, bool) {
	p, ok := byKey[key]
	return p, ok
}

// First returns the initial phase of the pipeline.
func First() Phase {
	return registry[0]
}

// Last reports whether key is the terminal phase.
func Last(key string) bool {
	return key == registry[len(registry)-1].Key
}

// Next returns the phase following key. ok is false when key is unknown or
// terminal.
func Next(key string) (Phase, bool) {
	p, found := byKey[key]
	if !found || p.OrderIndex+1 >= len(registry) {
		return Phase{}, false
	}
	return registry[p.OrderIndex+1], true
}
