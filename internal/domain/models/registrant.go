// Copyright The JoinFlow Authors.
// SPDX-License-Identifier: MIT

package models

// RegistrantStatusApproved is the provider-side status filter used when
// searching for an existing reusable registration.
const RegistrantStatusApproved = "approved"

// Registrant is the provider's record of a person registered for a specific
// webinar occurrence. Uniqueness is enforced by the provider, keyed on
// (webinarID, occurrenceID, email).
type Registrant struct {
	ID      string
	Email   string
	JoinURL string
	Status  string
}

// RegistrantPage is one page of a registrant listing.
type RegistrantPage struct {
	Registrants   []Registrant
	NextPageToken string
}

// RegistrantRequest carries the resolved identity fields sent to the
// provider when creating a registration.
type RegistrantRequest struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
}
