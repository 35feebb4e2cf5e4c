package member

// User types as issued by the members API.
const (
	TypeAdmin     = "admin"
	TypeMember    = "member"
	TypeApplicant = "applicant"
	TypeClient    = "client"
)

// IsValidUserType reports whether t is one of the types the members API
// issues. HTTP callers are already gated by binding tags; this guards the
// store for non-HTTP callers.
func IsValidUserType(t string) bool {
	switch t {
	case TypeAdmin, TypeMember, TypeApplicant, TypeClient:
		return true
	default:
		return false
	}
}

type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Type      string `json:"userType"`
}

// Profile only exists for users with Type == member.
type Profile struct {
	UserID         string   `json:"userId"`
	Bio            string   `json:"bio"`
	Skills         []string `json:"skills"`
	Interests      []string `json:"interests"`
	Specialization string   `json:"specialization"`
	Address        string   `json:"address"`
	SocialLinks    []string `json:"socialLinks"`
	ResumeURL      string   `json:"resumeUrl"`
}

// ApplicationInput is deliberately a named-field struct. The action used to
// take positional parameters and at least one caller passed them in the
// wrong order; named fields make that mistake impossible.
type ApplicationInput struct {
	SpecializationArea string `json:"specializationArea" binding:"required,min=2,max=120"`
	MotivationLetter   string `json:"motivationLetter" binding:"required,min=20,max=5000"`
	ProfilePhotoURL    string `json:"profilePhotoUrl" binding:"required,url"`
	ResumeURL          string `json:"resumeUrl" binding:"omitempty,url"`
	ReferredByMemberID string `json:"referredByMemberId" binding:"omitempty,uuid"`
}

type ProfileInput struct {
	Bio            string   `json:"bio" binding:"required,max=2000"`
	Skills         []string `json:"skills" binding:"omitempty,dive,min=1,max=60"`
	Interests      []string `json:"interests" binding:"omitempty,dive,min=1,max=60"`
	Specialization string   `json:"specialization" binding:"required,min=2,max=120"`
	Address        string   `json:"address" binding:"omitempty,max=300"`
	SocialLinks    []string `json:"socialLinks" binding:"omitempty,dive,url"`
	ResumeURL      string   `json:"resumeUrl" binding:"omitempty,url"`
}
