// Package submission defines the request shapes accepted by the public
// form routes. The bot-check token rides alongside every form.
package submission

type Kind string

const (
	KindContact        Kind = "contact"
	KindTestimonial    Kind = "testimonial"
	KindEventSignup    Kind = "event_signup"
	KindServiceBooking Kind = "service_booking"
)

func (k Kind) IsValid() bool {
	switch k {
	case KindContact, KindTestimonial, KindEventSignup, KindServiceBooking:
		return true
	default:
		return false
	}
}

type ContactMessage struct {
	Name          string `json:"name" binding:"required,min=2,max=120"`
	Email         string `json:"email" binding:"required,email"`
	Subject       string `json:"subject" binding:"required,min=3,max=200"`
	Message       string `json:"message" binding:"required,min=10,max=5000"`
	BotCheckToken string `json:"botCheckToken" binding:"required"`
}

type Testimonial struct {
	Name          string `json:"name" binding:"required,min=2,max=120"`
	Email         string `json:"email" binding:"required,email"`
	Organization  string `json:"organization" binding:"omitempty,max=200"`
	Quote         string `json:"quote" binding:"required,min=10,max=2000"`
	BotCheckToken string `json:"botCheckToken" binding:"required"`
}

type EventSignup struct {
	EventID       string `json:"eventId" binding:"required,uuid"`
	Name          string `json:"name" binding:"required,min=2,max=120"`
	Email         string `json:"email" binding:"required,email"`
	Organization  string `json:"organization" binding:"omitempty,max=200"`
	BotCheckToken string `json:"botCheckToken" binding:"required"`
}

type ServiceBooking struct {
	ServiceID     string `json:"serviceId" binding:"required,uuid"`
	Name          string `json:"name" binding:"required,min=2,max=120"`
	Email         string `json:"email" binding:"required,email"`
	PreferredDate string `json:"preferredDate" binding:"omitempty,datetime=2006-01-02"`
	Notes         string `json:"notes" binding:"omitempty,max=2000"`
	BotCheckToken string `json:"botCheckToken" binding:"required"`
}
