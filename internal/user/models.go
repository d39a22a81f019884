package user

import "time"

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 6

// User is the identity record owned by the credential store. The password
// hash never leaves the service boundary: it is excluded from JSON and the
// repository is the only writer.
type User struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`

	// Optional profile address and its derived geolocation point.
	Street    *string  `json:"street,omitempty"`
	City      *string  `json:"city,omitempty"`
	State     *string  `json:"state,omitempty"`
	ZipCode   *string  `json:"zipCode,omitempty"`
	Country   *string  `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`

	Commute   *CommutePreferences   `json:"commutePreferences,omitempty"`
	Housing   *HousingPreferences   `json:"housingPreferences,omitempty"`
	Amenities *AmenitiesPreferences `json:"amenitiesPreferences,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RegisterRequest is the payload for POST /users/register
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the payload for POST /users/login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is returned after successful registration or login
type AuthResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// PreferencesResponse is returned after a successful preference save
type PreferencesResponse struct {
	Success bool  `json:"success"`
	User    *User `json:"user"`
}

// WorkLocation is the commute anchor address
type WorkLocation struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
	Country string `json:"country"`
}

// CommutePreferences is the first step of the preferences flow
type CommutePreferences struct {
	WorkLocation         WorkLocation `json:"workLocation"`
	MaxCommuteTime       int          `json:"maxCommuteTime"`
	TransportationMethod string       `json:"transportationMethod"`
	Walkability          bool         `json:"walkability"`
}

// HousingPreferences is the second step of the preferences flow
type HousingPreferences struct {
	HomeType     string `json:"homeType"`
	RentOrBuy    string `json:"rentOrBuy"`
	RentPriceMin int    `json:"rentPriceMin"`
	RentPriceMax int    `json:"rentPriceMax"`
	BuyPriceMin  int    `json:"buyPriceMin"`
	BuyPriceMax  int    `json:"buyPriceMax"`
	Bedrooms     int    `json:"bedrooms"`
	Bathrooms    int    `json:"bathrooms"`
	Parking      string `json:"parking"`
}

// AmenitiesPreferences is the final step of the preferences flow
type AmenitiesPreferences struct {
	Interests            []string `json:"interests"`
	Location             string   `json:"location"`
	Lifestyle            []string `json:"lifestyle"`
	GoodSchoolDistrict   bool     `json:"goodSchoolDistrict"`
	ProximityToAmenities string   `json:"proximityToAmenities"`
}

// ValidationError marks a malformed client payload; handlers translate it to a 400.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(msg string) error {
	return &ValidationError{Message: msg}
}

// Validate checks the commute step the same way the signup flow does
func (p *CommutePreferences) Validate() error {
	if p.WorkLocation.Street == "" {
		return invalid("Work location street is required")
	}
	if p.WorkLocation.City == "" {
		return invalid("Work location city is required")
	}
	if p.WorkLocation.State == "" {
		return invalid("Work location state is required")
	}
	if len(p.WorkLocation.ZipCode) != 5 {
		return invalid("Work location ZIP code must be 5 digits")
	}
	if p.TransportationMethod == "" {
		return invalid("Transportation method is required")
	}
	if p.MaxCommuteTime < 0 {
		return invalid("Max commute time cannot be negative")
	}
	return nil
}

// Validate checks the housing step; price ranges only matter for the chosen mode
func (p *HousingPreferences) Validate() error {
	if p.HomeType == "" {
		return invalid("Home type is required")
	}
	if p.RentOrBuy == "" {
		return invalid("Rent or buy selection is required")
	}
	if p.RentOrBuy == "rent" || p.RentOrBuy == "either" {
		if p.RentPriceMin >= p.RentPriceMax {
			return invalid("Rent price minimum must be less than maximum")
		}
	}
	if p.RentOrBuy == "buy" || p.RentOrBuy == "either" {
		if p.BuyPriceMin >= p.BuyPriceMax {
			return invalid("Buy price minimum must be less than maximum")
		}
	}
	return nil
}

// Validate checks the amenities step
func (p *AmenitiesPreferences) Validate() error {
	if len(p.Interests) == 0 {
		return invalid("At least one interest is required")
	}
	return nil
}
