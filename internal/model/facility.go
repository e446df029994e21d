package model

import "strings"

type FacilityType string

const (
	FacilityTypeHospital              FacilityType = "HOSPITAL"
	FacilityTypeClinic                FacilityType = "CLINIC"
	FacilityTypeDiagnosticCenter      FacilityType = "DIAGNOSTIC_CENTER"
	FacilityTypePharmacy              FacilityType = "PHARMACY"
	FacilityTypeNursingHome           FacilityType = "NURSING_HOME"
	FacilityTypeRehabilitationCenter  FacilityType = "REHABILITATION_CENTER"
	FacilityTypeMentalHealthFacility  FacilityType = "MENTAL_HEALTH_FACILITY"
	FacilityTypeUrgentCare            FacilityType = "URGENT_CARE"
	FacilityTypeSpecialtyCenter       FacilityType = "SPECIALTY_CENTER"
	FacilityTypeDentalClinic          FacilityType = "DENTAL_CLINIC"
	FacilityTypePrimaryCare           FacilityType = "PRIMARY_CARE"
	FacilityTypeSurgicalCenter        FacilityType = "SURGICAL_CENTER"
	FacilityTypeBirthingCenter        FacilityType = "BIRTHING_CENTER"
	FacilityTypeHospice               FacilityType = "HOSPICE"
	FacilityTypeBloodBank             FacilityType = "BLOOD_BANK"
	FacilityTypeMedicalLaboratory     FacilityType = "MEDICAL_LABORATORY"
	FacilityTypeImagingCenter         FacilityType = "IMAGING_CENTER"
	FacilityTypePhysicalTherapyCenter FacilityType = "PHYSICAL_THERAPY_CENTER"
	FacilityTypeHomeHealthcare        FacilityType = "HOME_HEALTHCARE"
	FacilityTypeTelemedicine          FacilityType = "TELEMEDICINE"
)

var facilityTypeNames = map[FacilityType]string{
	FacilityTypeHospital:              "Hospital",
	FacilityTypeClinic:                "Clinic",
	FacilityTypeDiagnosticCenter:      "Diagnostic Center",
	FacilityTypePharmacy:              "Pharmacy",
	FacilityTypeNursingHome:           "Nursing Home",
	FacilityTypeRehabilitationCenter:  "Rehabilitation Center",
	FacilityTypeMentalHealthFacility:  "Mental Health Facility",
	FacilityTypeUrgentCare:            "Urgent Care",
	FacilityTypeSpecialtyCenter:       "Specialty Center",
	FacilityTypeDentalClinic:          "Dental Clinic",
	FacilityTypePrimaryCare:           "Primary Care Facility",
	FacilityTypeSurgicalCenter:        "Surgical Center",
	FacilityTypeBirthingCenter:        "Birthing Center",
	FacilityTypeHospice:               "Hospice",
	FacilityTypeBloodBank:             "Blood Bank",
	FacilityTypeMedicalLaboratory:     "Medical Laboratory",
	FacilityTypeImagingCenter:         "Imaging Center",
	FacilityTypePhysicalTherapyCenter: "Physical Therapy Center",
	FacilityTypeHomeHealthcare:        "Home Healthcare Service",
	FacilityTypeTelemedicine:          "Telemedicine Provider",
}

// ParseFacilityType matches s case-insensitively against the known types.
func ParseFacilityType(s string) (FacilityType, bool) {
	t := FacilityType(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := facilityTypeNames[t]
	return t, ok
}

func (t FacilityType) DisplayName() string {
	return facilityTypeNames[t]
}

func (t FacilityType) Valid() bool {
	_, ok := facilityTypeNames[t]
	return ok
}

type Facility struct {
	Base
	Name    string       `json:"name" db:"name"`
	Type    FacilityType `json:"type" db:"type"`
	Address string       `json:"address" db:"address"`
}

// FacilityWithCount is a facility row joined with its patient count.
type FacilityWithCount struct {
	Facility
	PatientCount int64 `db:"patient_count"`
}

type FacilityInput struct {
	Name    string `json:"name" validate:"notblank,max=255"`
	Type    string `json:"type" validate:"notblank"`
	Address string `json:"address" validate:"notblank"`
}

type FacilityView struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	TypeDisplayName string `json:"type_display_name"`
	Address         string `json:"address"`
	PatientCount    int64  `json:"patient_count"`
}

type FacilityFilters struct {
	Name string
	Type string
}
