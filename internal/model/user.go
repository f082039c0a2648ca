package model

import (
	"time"

	"github.com/jmoiron/sqlx/types"
)

// User type constants
const (
	UserTypePatient      = "patient"
	UserTypeProfessional = "professional"
	UserTypePharmacy     = "pharmacy"
)

// User is an account of any type. Professional and pharmacy profile fields
// live on the same record and are nil when they do not apply.
type User struct {
	ID       int64  `json:"id" db:"id"`
	Username string `json:"username" db:"username"`
	Email    string `json:"email" db:"email"`
	// Password holds the bcrypt hash and is never serialized.
	Password   string `json:"-" db:"password"`
	FullName   string `json:"fullName" db:"full_name"`
	UserType   string `json:"userType" db:"user_type"`
	IsVerified bool   `json:"isVerified" db:"is_verified"`

	BirthDate *Date `json:"birthDate" db:"birth_date"`

	Specialization            *string        `json:"specialization" db:"specialization"`
	Hospital                  *string        `json:"hospital" db:"hospital"`
	LicenseNumber             *string        `json:"licenseNumber" db:"license_number"`
	StudioAddress             *string        `json:"studioAddress" db:"studio_address"`
	BookingCalendar           types.JSONText `json:"bookingCalendar" db:"booking_calendar"`
	Contacts                  types.JSONText `json:"contacts" db:"contacts"`
	Reviews                   types.JSONText `json:"reviews" db:"reviews"`
	VerificationDocument      *string        `json:"verificationDocument" db:"verification_document"`
	AvailableForSecondOpinion bool           `json:"availableForSecondOpinion" db:"available_for_second_opinion"`
	CalendarSettings          types.JSONText `json:"calendarSettings" db:"calendar_settings"`

	PharmacyName   *string `json:"pharmacyName" db:"pharmacy_name"`
	Address        *string `json:"address" db:"address"`
	PharmacyOffers *string `json:"pharmacyOffers" db:"pharmacy_offers"`
	GoogleMapsLink *string `json:"googleMapsLink" db:"google_maps_link"`

	City         *string   `json:"city" db:"city"`
	Region       *string   `json:"region" db:"region"`
	Phone        *string   `json:"phone" db:"phone"`
	Bio          *string   `json:"bio" db:"bio"`
	ProfileImage *string   `json:"profileImage" db:"profile_image"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// IsProfessional reports whether the user can act as a doctor.
func (u *User) IsProfessional() bool {
	return u.UserType == UserTypeProfessional
}

// RegisterRequest is the registration payload. Server-assigned fields such as
// id, isVerified and createdAt are deliberately absent.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	FullName string `json:"fullName" binding:"required"`
	UserType string `json:"userType" binding:"omitempty,oneof=patient professional pharmacy"`

	BirthDate *Date `json:"birthDate"`

	Specialization            *string        `json:"specialization"`
	Hospital                  *string        `json:"hospital"`
	LicenseNumber             *string        `json:"licenseNumber"`
	StudioAddress             *string        `json:"studioAddress"`
	BookingCalendar           types.JSONText `json:"bookingCalendar"`
	Contacts                  types.JSONText `json:"contacts"`
	VerificationDocument      *string        `json:"verificationDocument"`
	AvailableForSecondOpinion bool           `json:"availableForSecondOpinion"`
	CalendarSettings          types.JSONText `json:"calendarSettings"`

	PharmacyName   *string `json:"pharmacyName"`
	Address        *string `json:"address"`
	PharmacyOffers *string `json:"pharmacyOffers"`
	GoogleMapsLink *string `json:"googleMapsLink" binding:"omitempty,url"`

	City         *string `json:"city"`
	Region       *string `json:"region"`
	Phone        *string `json:"phone"`
	Bio          *string `json:"bio"`
	ProfileImage *string `json:"profileImage"`
}

// NewUser builds the record to insert; passwordHash replaces the plaintext.
func (r *RegisterRequest) NewUser(passwordHash string) *User {
	userType := r.UserType
	if userType == "" {
		userType = UserTypePatient
	}
	return &User{
		Username:                  r.Username,
		Email:                     r.Email,
		Password:                  passwordHash,
		FullName:                  r.FullName,
		UserType:                  userType,
		IsVerified:                userType == UserTypePatient,
		BirthDate:                 r.BirthDate,
		Specialization:            r.Specialization,
		Hospital:                  r.Hospital,
		LicenseNumber:             r.LicenseNumber,
		StudioAddress:             r.StudioAddress,
		BookingCalendar:           r.BookingCalendar,
		Contacts:                  r.Contacts,
		Reviews:                   types.JSONText("[]"),
		VerificationDocument:      r.VerificationDocument,
		AvailableForSecondOpinion: r.AvailableForSecondOpinion,
		CalendarSettings:          r.CalendarSettings,
		PharmacyName:              r.PharmacyName,
		Address:                   r.Address,
		PharmacyOffers:            r.PharmacyOffers,
		GoogleMapsLink:            r.GoogleMapsLink,
		City:                      r.City,
		Region:                    r.Region,
		Phone:                     r.Phone,
		Bio:                       r.Bio,
		ProfileImage:              r.ProfileImage,
	}
}

// LoginRequest carries credentials. Missing fields are reported by the
// handler with a single message rather than field violations.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// UserUpdate lists the profile fields a user may change. Nil means unchanged.
type UserUpdate struct {
	FullName                  *string        `json:"fullName" binding:"omitempty,min=1"`
	BirthDate                 *Date          `json:"birthDate"`
	Specialization            *string        `json:"specialization"`
	Hospital                  *string        `json:"hospital"`
	LicenseNumber             *string        `json:"licenseNumber"`
	StudioAddress             *string        `json:"studioAddress"`
	BookingCalendar           types.JSONText `json:"bookingCalendar"`
	Contacts                  types.JSONText `json:"contacts"`
	VerificationDocument      *string        `json:"verificationDocument"`
	AvailableForSecondOpinion *bool          `json:"availableForSecondOpinion"`
	CalendarSettings          types.JSONText `json:"calendarSettings"`
	PharmacyName              *string        `json:"pharmacyName"`
	Address                   *string        `json:"address"`
	PharmacyOffers            *string        `json:"pharmacyOffers"`
	GoogleMapsLink            *string        `json:"googleMapsLink" binding:"omitempty,url"`
	City                      *string        `json:"city"`
	Region                    *string        `json:"region"`
	Phone                     *string        `json:"phone"`
	Bio                       *string        `json:"bio"`
	ProfileImage              *string        `json:"profileImage"`
}

// Apply copies the set fields of u onto user.
func (u *UserUpdate) Apply(user *User) {
	setString(&user.FullName, u.FullName)
	if u.BirthDate != nil {
		user.BirthDate = u.BirthDate
	}
	setOptional(&user.Specialization, u.Specialization)
	setOptional(&user.Hospital, u.Hospital)
	setOptional(&user.LicenseNumber, u.LicenseNumber)
	setOptional(&user.StudioAddress, u.StudioAddress)
	setJSON(&user.BookingCalendar, u.BookingCalendar)
	setJSON(&user.Contacts, u.Contacts)
	setOptional(&user.VerificationDocument, u.VerificationDocument)
	if u.AvailableForSecondOpinion != nil {
		user.AvailableForSecondOpinion = *u.AvailableForSecondOpinion
	}
	setJSON(&user.CalendarSettings, u.CalendarSettings)
	setOptional(&user.PharmacyName, u.PharmacyName)
	setOptional(&user.Address, u.Address)
	setOptional(&user.PharmacyOffers, u.PharmacyOffers)
	setOptional(&user.GoogleMapsLink, u.GoogleMapsLink)
	setOptional(&user.City, u.City)
	setOptional(&user.Region, u.Region)
	setOptional(&user.Phone, u.Phone)
	setOptional(&user.Bio, u.Bio)
	setOptional(&user.ProfileImage, u.ProfileImage)
}

// UserFilter narrows user listings.
type UserFilter struct {
	UserType                  string
	AvailableForSecondOpinion *bool
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setOptional(dst **string, src *string) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func setJSON(dst *types.JSONText, src types.JSONText) {
	if len(src) > 0 {
		*dst = src
	}
}

// Changes lists the column assignments for the set fields of u.
func (u *UserUpdate) Changes() []Change {
	var c changeSet
	c.str("full_name", u.FullName)
	c.add("birth_date", u.BirthDate != nil, u.BirthDate)
	c.str("specialization", u.Specialization)
	c.str("hospital", u.Hospital)
	c.str("license_number", u.LicenseNumber)
	c.str("studio_address", u.StudioAddress)
	c.add("booking_calendar", len(u.BookingCalendar) > 0, u.BookingCalendar)
	c.add("contacts", len(u.Contacts) > 0, u.Contacts)
	c.str("verification_document", u.VerificationDocument)
	c.add("available_for_second_opinion", u.AvailableForSecondOpinion != nil, u.AvailableForSecondOpinion)
	c.add("calendar_settings", len(u.CalendarSettings) > 0, u.CalendarSettings)
	c.str("pharmacy_name", u.PharmacyName)
	c.str("address", u.Address)
	c.str("pharmacy_offers", u.PharmacyOffers)
	c.str("google_maps_link", u.GoogleMapsLink)
	c.str("city", u.City)
	c.str("region", u.Region)
	c.str("phone", u.Phone)
	c.str("bio", u.Bio)
	c.str("profile_image", u.ProfileImage)
	return c
}
