package model

import "time"

// Service is a salon menu item. Services are deactivated, never deleted.
type Service struct {
	ID           string    `json:"_id" bson:"_id,omitempty"`
	Name         string    `json:"name" bson:"name" validate:"required,min=1,max=100"`
	Price        int       `json:"price" bson:"price" validate:"min=0"`
	Active       bool      `json:"active" bson:"active"`
	DisplayOrder int       `json:"display_order" bson:"display_order"`
	CreatedAt    time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}

type ServiceUpdate struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Price        *int    `json:"price,omitempty" validate:"omitempty,min=0"`
	Active       *bool   `json:"active,omitempty"`
	DisplayOrder *int    `json:"display_order,omitempty"`
}

// User is keyed by the LINE user id.
type User struct {
	ID          string    `json:"userId" bson:"_id"`
	DisplayName string    `json:"displayName" bson:"display_name"`
	PictureURL  string    `json:"pictureUrl,omitempty" bson:"picture_url,omitempty"`
	Phone       string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Birthday    string    `json:"birthday,omitempty" bson:"birthday,omitempty"`
	CreatedAt   time.Time `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updated_at"`
}

func (u *User) Registered() bool {
	return u != nil && u.Phone != "" && u.Birthday != ""
}

type RegisterRequest struct {
	UserID      string `json:"userId" validate:"required,max=64"`
	DisplayName string `json:"displayName" validate:"max=100"`
	PictureURL  string `json:"pictureUrl" validate:"omitempty,url"`
	Phone       string `json:"phone" validate:"required,phone_number"`
	Birthday    string `json:"birthday" validate:"required,datetime=2006-01-02,past_date"`
}

// Customer is the staff-facing directory entry. Only LineDisplayName tracks
// the LINE profile after creation; every other field is staff-owned.
type Customer struct {
	ID              string    `json:"id" bson:"_id,omitempty"`
	LineUserID      string    `json:"line_user_id,omitempty" bson:"line_user_id,omitempty"`
	LineDisplayName string    `json:"line_display_name,omitempty" bson:"line_display_name,omitempty"`
	Name            string    `json:"name" bson:"name"`
	Nickname        string    `json:"nickname" bson:"nickname"`
	Phone           string    `json:"phone" bson:"phone"`
	Birthday        string    `json:"birthday" bson:"birthday"`
	Note            string    `json:"note" bson:"note"`
	CreatedAt       time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" bson:"updated_at"`
}

type CustomerUpdate struct {
	Name     *string `json:"name,omitempty" validate:"omitempty,max=100"`
	Nickname *string `json:"nickname,omitempty" validate:"omitempty,max=100"`
	Phone    *string `json:"phone,omitempty" validate:"omitempty,phone_number"`
	Birthday *string `json:"birthday,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Note     *string `json:"note,omitempty" validate:"omitempty,max=2000"`
}
