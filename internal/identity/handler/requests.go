package handler

import (
	"strings"

	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/biometric"
	id "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain"
	dErrors "github.com/bhumeshparihar/e-matdaan-voting-system/pkg/domain-errors"
)

const maxNameLength = 120

var errMissingFields = dErrors.New(dErrors.CodeBadRequest, "missing fields")

// RegisterRequest is the body of POST /api/register.
type RegisterRequest struct {
	Name    string `json:"name"`
	Aadhaar string `json:"aadhaar"`
	Phone   string `json:"phone"`
	Image   string `json:"image"`

	parsedNationalID id.NationalID
	parsedPhone      id.Phone
	parsedImage      biometric.DecodedImage
}

// Validate implements httputil.Validatable.
func (r *RegisterRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if r.Name == "" || strings.TrimSpace(r.Aadhaar) == "" || strings.TrimSpace(r.Phone) == "" || r.Image == "" {
		return errMissingFields
	}
	if len(r.Name) > maxNameLength {
		return dErrors.New(dErrors.CodeValidation, "name must be at most 120 characters")
	}
	var err error
	if r.parsedNationalID, err = id.ParseNationalID(r.Aadhaar); err != nil {
		return err
	}
	if r.parsedPhone, err = id.ParsePhone(r.Phone); err != nil {
		return err
	}
	if r.parsedImage, err = biometric.DecodeImage(r.Image); err != nil {
		return err
	}
	return nil
}

func (r *RegisterRequest) ParsedNationalID() id.NationalID { return r.parsedNationalID }

func (r *RegisterRequest) ParsedPhone() id.Phone { return r.parsedPhone }

func (r *RegisterRequest) ParsedImage() biometric.DecodedImage { return r.parsedImage }

// LoginRequest is the body of POST /api/login_face.
type LoginRequest struct {
	Aadhaar string `json:"aadhaar"`
	Phone   string `json:"phone"`
	Image   string `json:"image"`

	parsedNationalID id.NationalID
	parsedPhone      id.Phone
	parsedImage      biometric.DecodedImage
}

// Validate implements httputil.Validatable.
func (r *LoginRequest) Validate() error {
	if strings.TrimSpace(r.Aadhaar) == "" || strings.TrimSpace(r.Phone) == "" || r.Image == "" {
		return errMissingFields
	}
	var err error
	if r.parsedNationalID, err = id.ParseNationalID(r.Aadhaar); err != nil {
		return err
	}
	if r.parsedPhone, err = id.ParsePhone(r.Phone); err != nil {
		return err
	}
	if r.parsedImage, err = biometric.DecodeImage(r.Image); err != nil {
		return err
	}
	return nil
}

func (r *LoginRequest) ParsedNationalID() id.NationalID { return r.parsedNationalID }

func (r *LoginRequest) ParsedPhone() id.Phone { return r.parsedPhone }

func (r *LoginRequest) ParsedImage() biometric.DecodedImage { return r.parsedImage }

// LinkRequest is the body of POST /api/link_voter. DOB is compared verbatim.
type LinkRequest struct {
	Aadhaar string `json:"aadhaar"`
	Phone   string `json:"phone"`
	VoterID string `json:"voterID"`
	DOB     string `json:"dob"`

	parsedNationalID id.NationalID
	parsedPhone      id.Phone
	parsedVoterID    id.VoterID
}

// Validate implements httputil.Validatable.
func (r *LinkRequest) Validate() error {
	r.DOB = strings.TrimSpace(r.DOB)
	if strings.TrimSpace(r.Aadhaar) == "" || strings.TrimSpace(r.Phone) == "" ||
		strings.TrimSpace(r.VoterID) == "" || r.DOB == "" {
		return errMissingFields
	}
	var err error
	if r.parsedNationalID, err = id.ParseNationalID(r.Aadhaar); err != nil {
		return err
	}
	if r.parsedPhone, err = id.ParsePhone(r.Phone); err != nil {
		return err
	}
	if r.parsedVoterID, err = id.ParseVoterID(r.VoterID); err != nil {
		return err
	}
	return nil
}

func (r *LinkRequest) ParsedNationalID() id.NationalID { return r.parsedNationalID }

func (r *LinkRequest) ParsedPhone() id.Phone { return r.parsedPhone }

func (r *LinkRequest) ParsedVoterID() id.VoterID { return r.parsedVoterID }
