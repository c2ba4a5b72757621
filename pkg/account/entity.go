package account

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jobport/jobport/pkg/softdelete"
)

// UsageType tags what a user account is for. Staff accounts carry no
// usage type at all; the tag is immutable after registration.
type UsageType string

const (
	UsageJobSeeker UsageType = "JobSeeker"
	UsageEmployer  UsageType = "Employer"
)

// ParseUsageType accepts the URL/body form of a role tag.
func ParseUsageType(s string) (UsageType, error) {
	switch s {
	case "jobseeker", "JobSeeker":
		return UsageJobSeeker, nil
	case "employer", "Employer":
		return UsageEmployer, nil
	default:
		return "", fmt.Errorf("unknown usage type %q", s)
	}
}

// User is the identity record. Email is the authentication key and is
// unique among non-removed records.
type User struct {
	ID           uuid.UUID
	Email        string
	Username     string
	FirstName    string
	LastName     string
	UsageType    UsageType // empty for staff/superuser accounts
	IsActive     bool
	IsStaff      bool
	IsSuperuser  bool
	PasswordHash string
	softdelete.Meta
}

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

type Education string

const (
	EducationHighSchool Education = "HighSchool"
	EducationBachelor   Education = "Bachelor"
	EducationMaster     Education = "Master"
	EducationDoctorate  Education = "Doctorate"
)

// JobSeeker is the profile owned 1:1 by a user with UsageJobSeeker.
// The owning user cannot be purged while the profile exists.
type JobSeeker struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	BirthDate       *time.Time
	Gender          Gender
	Education       Education
	ActiveAddressID *uuid.UUID
	SkillIDs        []uuid.UUID
	softdelete.Meta
}

// Company is the profile owned 1:1 by a user with UsageEmployer.
// Purging the owning user cascades to the company.
type Company struct {
	ID                uuid.UUID
	UserID            uuid.UUID
	Name              string
	EstablishmentYear int
	PhoneNumber       string
	ActiveAddressID   *uuid.UUID
	IndustryAreaIDs   []uuid.UUID
	softdelete.Meta
}

// OwnerKind discriminates which profile type an address belongs to.
type OwnerKind string

const (
	OwnerJobSeeker OwnerKind = "jobseeker"
	OwnerCompany   OwnerKind = "company"
)

// Address is attached to a profile through a tagged owner relation.
// At most one address per owner is active at any time.
type Address struct {
	ID          uuid.UUID
	OwnerKind   OwnerKind
	OwnerID     uuid.UUID
	AddressText string
	City        string
	IsActive    bool
	softdelete.Meta
}

// SeekerFile is a document record (resume, certificate) owned by a job
// seeker. The reference is severed, not the file record, when the seeker
// row is purged.
type SeekerFile struct {
	ID          uuid.UUID
	JobSeekerID *uuid.UUID
	FilePath    string
	IsActive    bool
	softdelete.Meta
}
