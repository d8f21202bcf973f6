package settings

// Runtime setting keys stored in the settings table.
const (
	// KeySignupDefaultBranch overrides the branch code assigned when a
	// signup omits one.
	KeySignupDefaultBranch = "signup.default-branch"
	// KeySignupRandomPIN enables synthesizing a random 4-digit PIN when a
	// signup omits the PIN.
	KeySignupRandomPIN = "signup.random-pin"
)

// KnownKeys lists every setting key the admin API accepts.
var KnownKeys = []string{
	KeySignupDefaultBranch,
	KeySignupRandomPIN,
}

// IsKnownKey reports whether a key is a recognized runtime setting.
func IsKnownKey(key string) bool {
	for _, known := range KnownKeys {
		if known == key {
			return true
		}
	}
	return false
}
