package model

import "github.com/lib/pq"

type Pharmacy struct {
	ID              int64          `json:"id" db:"id"`
	Name            string         `json:"name" db:"name"`
	Address         string         `json:"address" db:"address"`
	City            string         `json:"city" db:"city"`
	Region          string         `json:"region" db:"region"`
	Phone           *string        `json:"phone" db:"phone"`
	Specializations pq.StringArray `json:"specializations" db:"specializations"`
	Rating          *int           `json:"rating" db:"rating"`
	ReviewCount     int            `json:"reviewCount" db:"review_count"`
	ImageURL        *string        `json:"imageUrl" db:"image_url"`
	Latitude        *float64       `json:"latitude" db:"latitude"`
	Longitude       *float64       `json:"longitude" db:"longitude"`
}

// HasSpecialization reports whether s is one of the pharmacy's specializations.
func (p *Pharmacy) HasSpecialization(s string) bool {
	for _, v := range p.Specializations {
		if v == s {
			return true
		}
	}
	return false
}

// PharmacyUpdate lists the mutable pharmacy fields. Nil means unchanged.
type PharmacyUpdate struct {
	Name            *string   `json:"name"`
	Address         *string   `json:"address"`
	City            *string   `json:"city"`
	Region          *string   `json:"region"`
	Phone           *string   `json:"phone"`
	Specializations *[]string `json:"specializations"`
	Rating          *int      `json:"rating" binding:"omitempty,gte=0,lte=5"`
	ReviewCount     *int      `json:"reviewCount" binding:"omitempty,gte=0"`
	ImageURL        *string   `json:"imageUrl"`
	Latitude        *float64  `json:"latitude"`
	Longitude       *float64  `json:"longitude"`
}

// Apply copies the set fields of u onto p.
func (u *PharmacyUpdate) Apply(p *Pharmacy) {
	setString(&p.Name, u.Name)
	setString(&p.Address, u.Address)
	setString(&p.City, u.City)
	setString(&p.Region, u.Region)
	setOptional(&p.Phone, u.Phone)
	if u.Specializations != nil {
		p.Specializations = append(pq.StringArray{}, *u.Specializations...)
	}
	if u.Rating != nil {
		v := *u.Rating
		p.Rating = &v
	}
	if u.ReviewCount != nil {
		p.ReviewCount = *u.ReviewCount
	}
	setOptional(&p.ImageURL, u.ImageURL)
	if u.Latitude != nil {
		v := *u.Latitude
		p.Latitude = &v
	}
	if u.Longitude != nil {
		v := *u.Longitude
		p.Longitude = &v
	}
}

// Changes lists the column assignments for the set fields of u.
func (u *PharmacyUpdate) Changes() []Change {
	var c changeSet
	c.str("name", u.Name)
	c.str("address", u.Address)
	c.str("city", u.City)
	c.str("region", u.Region)
	c.str("phone", u.Phone)
	if u.Specializations != nil {
		c.add("specializations", true, pq.StringArray(*u.Specializations))
	}
	c.add("rating", u.Rating != nil, u.Rating)
	c.add("review_count", u.ReviewCount != nil, u.ReviewCount)
	c.str("image_url", u.ImageURL)
	c.add("latitude", u.Latitude != nil, u.Latitude)
	c.add("longitude", u.Longitude != nil, u.Longitude)
	return c
}

// PharmacyFilter narrows pharmacy listings; empty values mean no filter.
// City matches case-insensitively.
type PharmacyFilter struct {
	Region         string `form:"region"`
	City           string `form:"city"`
	Specialization string `form:"specialization"`
}

type Testimonial struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Role     string  `json:"role" db:"role"`
	Location string  `json:"location" db:"location"`
	Content  string  `json:"content" db:"content"`
	Rating   int     `json:"rating" db:"rating"`
	ImageURL *string `json:"imageUrl" db:"image_url"`
}
