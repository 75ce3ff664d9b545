package model

// Profile is the self-service view of a client user.
type Profile struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Picture string `json:"picture"`
}

// ProfileForm is the editable copy of a profile. Password is write-only and
// starts blank on every load.
type ProfileForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Picture  string `json:"picture"`
}

// NewProfileForm seeds an editable form from a loaded profile.
func NewProfileForm(p Profile) ProfileForm {
	return ProfileForm{
		Name:    p.Name,
		Email:   p.Email,
		Phone:   p.Phone,
		Picture: p.Picture,
	}
}

// LoginRequest is the payload for client authentication.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest is the payload for client registration.
type SignupRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Phone    string `json:"phone"`
}

// OTPSendRequest asks the API to deliver a one-time code.
type OTPSendRequest struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// OTPVerifyRequest completes registration with the delivered code.
type OTPVerifyRequest struct {
	Email    string `json:"email"`
	OTP      string `json:"otp" binding:"required,len=6,numeric"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
}
