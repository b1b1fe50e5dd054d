package models

import "time"

// DemoUserID is the identity assigned to the built-in demo account.
const DemoUserID = "demo"

// User is an application account. Local accounts carry a bcrypt PasswordHash; accounts
// created from SSO claims carry Sub instead.
type User struct {
	ID                  string    `bson:"_id,omitempty" json:"id"`
	Sub                 string    `bson:"sub,omitempty" json:"sub,omitempty"` // OIDC subject
	Email               string    `bson:"email" json:"email"`
	Name                string    `bson:"name" json:"name"`
	PasswordHash        string    `bson:"passwordHash,omitempty" json:"-"`
	Company             string    `bson:"company,omitempty" json:"company,omitempty"`
	Role                string    `bson:"role,omitempty" json:"role,omitempty"`
	Tier                string    `bson:"tier" json:"tier"`
	OnboardingCompleted bool      `bson:"onboardingCompleted" json:"onboardingCompleted"`
	Profile             Profile   `bson:"profile" json:"profile"`
	CreatedAt           time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Profile is filled in during onboarding.
type Profile struct {
	Expertise      []string `bson:"expertise,omitempty" json:"expertise"`
	VoiceProfile   string   `bson:"voiceProfile,omitempty" json:"voiceProfile"`
	AuthorityScore int      `bson:"authorityScore" json:"authorityScore"`
	WritingSamples []string `bson:"writingSamples,omitempty" json:"writingSamples,omitempty"`
	Goals          []string `bson:"goals,omitempty" json:"goals,omitempty"`
}

// DemoUser returns the fixed profile served for the demo identity.
func DemoUser(email string) *User {
	return &User{
		ID:                  DemoUserID,
		Email:               email,
		Name:                "Demo User",
		Company:             "Demo Company",
		Role:                "executive",
		Tier:                "professional",
		OnboardingCompleted: true,
		Profile: Profile{
			Expertise:      []string{"Artificial Intelligence", "Strategic Planning"},
			AuthorityScore: 72,
		},
	}
}
