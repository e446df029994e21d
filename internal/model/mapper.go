package model

import "strings"

// ToFacilityView maps a stored facility and its patient count to the API view.
func ToFacilityView(f *Facility, patientCount int64) FacilityView {
	return FacilityView{
		ID:              f.ID,
		Name:            f.Name,
		Type:            string(f.Type),
		TypeDisplayName: f.Type.DisplayName(),
		Address:         f.Address,
		PatientCount:    patientCount,
	}
}

func ToFacilityViews(items []*FacilityWithCount) []FacilityView {
	views := make([]FacilityView, 0, len(items))
	for _, item := range items {
		views = append(views, ToFacilityView(&item.Facility, item.PatientCount))
	}
	return views
}

// ApplyFacilityInput copies the mutable fields of in onto f. t is the parsed type.
func ApplyFacilityInput(f *Facility, in FacilityInput, t FacilityType) {
	f.Name = strings.TrimSpace(in.Name)
	f.Type = t
	f.Address = strings.TrimSpace(in.Address)
}

func ToPatientView(p *Patient) PatientView {
	return PatientView{
		ID:              p.ID,
		FacilityID:      p.FacilityID,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
		DateOfBirth:     Date{Time: p.DateOfBirth},
		Gender:          p.Gender,
		Address:         p.Address,
		PhoneNumber:     p.PhoneNumber,
		Email:           p.Email,
		InsuranceNumber: p.InsuranceNumber,
	}
}

func ToPatientViews(items []*Patient) []PatientView {
	views := make([]PatientView, 0, len(items))
	for _, item := range items {
		views = append(views, ToPatientView(item))
	}
	return views
}

// ApplyPatientInput copies the mutable fields of in onto p.
func ApplyPatientInput(p *Patient, in PatientInput) {
	p.FacilityID = in.FacilityID
	p.FirstName = strings.TrimSpace(in.FirstName)
	p.LastName = strings.TrimSpace(in.LastName)
	p.DateOfBirth = in.DateOfBirth.Time
	p.Gender = strings.TrimSpace(in.Gender)
	p.Address = strings.TrimSpace(in.Address)
	p.PhoneNumber = strings.TrimSpace(in.PhoneNumber)
	p.Email = strings.TrimSpace(in.Email)
	p.InsuranceNumber = strings.TrimSpace(in.InsuranceNumber)
}

// UniqueValues lists the non-empty unique fields of p in check order.
func (p *Patient) UniqueValues() []UniqueValue {
	var out []UniqueValue
	for _, v := range []UniqueValue{
		{UniqueEmail, p.Email},
		{UniquePhoneNumber, p.PhoneNumber},
		{UniqueInsuranceNumber, p.InsuranceNumber},
	} {
		if v.Value != "" {
			out = append(out, v)
		}
	}
	return out
}

type UniqueValue struct {
	Field UniqueField
	Value string
}
