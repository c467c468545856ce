package models

import (
	"errors"
	"fmt"
)

// RecordType is the kind of health measurement
type RecordType string

const (
	RecordBloodPressure RecordType = "BLOOD_PRESSURE"
	RecordWeight        RecordType = "WEIGHT"
	RecordBloodSugar    RecordType = "BLOOD_SUGAR"
	RecordHeartRate     RecordType = "HEART_RATE"
)

// ParseRecordType accepts the wire name of a record type.
func ParseRecordType(s string) (RecordType, error) {
	switch rt := RecordType(s); rt {
	case RecordBloodPressure, RecordWeight, RecordBloodSugar, RecordHeartRate:
		return rt, nil
	}
	return "", fmt.Errorf("unknown record type %q", s)
}

// MeasureTime tags when during the day a measurement was taken
type MeasureTime string

const (
	MeasureMorning    MeasureTime = "MORNING"
	MeasureAfternoon  MeasureTime = "AFTERNOON"
	MeasureEvening    MeasureTime = "EVENING"
	MeasureBeforeMeal MeasureTime = "BEFORE_MEAL"
	MeasureAfterMeal  MeasureTime = "AFTER_MEAL"
)

// ErrInvalidRecord is returned when a health form is missing required values
var ErrInvalidRecord = errors.New("invalid health record")

// HealthRecord is one measurement owned by a group member
type HealthRecord struct {
	ID              int64      `json:"id"`
	UserID          int64      `json:"userId"`
	UserDisplayName string     `json:"userDisplayName,omitempty"`
	RecordType      RecordType `json:"recordType"`
	RecordDate      string     `json:"recordDate"`
	Systolic        *int       `json:"systolic,omitempty"`
	Diastolic       *int       `json:"diastolic,omitempty"`
	HeartRate       *int       `json:"heartRate,omitempty"`
	Weight          *float64   `json:"weight,omitempty"`
	BloodSugar      *int       `json:"bloodSugar,omitempty"`
	Note            string     `json:"note,omitempty"`
	MeasureTime     string     `json:"measureTime,omitempty"`
	CreatedAt       string     `json:"createdAt,omitempty"`
}

// HealthRecordRequest is the create/update body for a record
type HealthRecordRequest struct {
	RecordType  RecordType `json:"recordType"`
	RecordDate  string     `json:"recordDate"`
	Systolic    *int       `json:"systolic"`
	Diastolic   *int       `json:"diastolic"`
	HeartRate   *int       `json:"heartRate"`
	Weight      *float64   `json:"weight"`
	BloodSugar  *int       `json:"bloodSugar"`
	Note        *string    `json:"note"`
	MeasureTime *string    `json:"measureTime"`
}

// HealthMeasurement is the type-specific part of a health form. Exactly one
// of BloodPressure, Weight, BloodSugar or HeartRate.
type HealthMeasurement interface {
	Type() RecordType
	Validate() error
	apply(req *HealthRecordRequest)
}

type BloodPressure struct {
	Systolic  int
	Diastolic int
	HeartRate int // optional, 0 when not measured
}

type Weight struct {
	Kg float64
}

type BloodSugar struct {
	MgDL int
}

type HeartRate struct {
	BPM int
}

func (BloodPressure) Type() RecordType { return RecordBloodPressure }
func (Weight) Type() RecordType        { return RecordWeight }
func (BloodSugar) Type() RecordType    { return RecordBloodSugar }
func (HeartRate) Type() RecordType     { return RecordHeartRate }

func (m BloodPressure) Validate() error {
	if m.Systolic <= 0 || m.Diastolic <= 0 {
		return fmt.Errorf("%w: systolic and diastolic are required", ErrInvalidRecord)
	}
	return nil
}

func (m Weight) Validate() error {
	if m.Kg <= 0 {
		return fmt.Errorf("%w: weight is required", ErrInvalidRecord)
	}
	return nil
}

func (m BloodSugar) Validate() error {
	if m.MgDL <= 0 {
		return fmt.Errorf("%w: blood sugar is required", ErrInvalidRecord)
	}
	return nil
}

func (m HeartRate) Validate() error {
	if m.BPM <= 0 {
		return fmt.Errorf("%w: heart rate is required", ErrInvalidRecord)
	}
	return nil
}

func (m BloodPressure) apply(req *HealthRecordRequest) {
	req.Systolic = intPtr(m.Systolic)
	req.Diastolic = intPtr(m.Diastolic)
	if m.HeartRate > 0 {
		req.HeartRate = intPtr(m.HeartRate)
	}
}

func (m Weight) apply(req *HealthRecordRequest)     { req.Weight = &m.Kg }
func (m BloodSugar) apply(req *HealthRecordRequest) { req.BloodSugar = intPtr(m.MgDL) }
func (m HeartRate) apply(req *HealthRecordRequest)  { req.HeartRate = intPtr(m.BPM) }

// HealthForm is the user-editable health record form.
type HealthForm struct {
	Date        string
	Measurement HealthMeasurement
	Note        string
	MeasureTime MeasureTime
}

// Request validates the form and builds the request body.
func (f HealthForm) Request() (HealthRecordRequest, error) {
	if f.Measurement == nil {
		return HealthRecordRequest{}, fmt.Errorf("%w: measurement is required", ErrInvalidRecord)
	}
	if f.Date == "" {
		return HealthRecordRequest{}, fmt.Errorf("%w: date is required", ErrInvalidRecord)
	}
	if err := f.Measurement.Validate(); err != nil {
		return HealthRecordRequest{}, err
	}
	req := HealthRecordRequest{
		RecordType: f.Measurement.Type(),
		RecordDate: f.Date,
	}
	if f.Note != "" {
		note := f.Note
		req.Note = &note
	}
	if f.MeasureTime != "" {
		mt := string(f.MeasureTime)
		req.MeasureTime = &mt
	}
	f.Measurement.apply(&req)
	return req, nil
}

// PressureStatus classifies a blood pressure reading
type PressureStatus string

const (
	PressureNormal        PressureStatus = "normal"
	PressureElevated      PressureStatus = "elevated"
	PressurePreHypertense PressureStatus = "pre-hypertension"
	PressureHypertensive  PressureStatus = "hypertension"
)

// BloodPressureStatus classifies a systolic/diastolic pair.
func BloodPressureStatus(systolic, diastolic int) PressureStatus {
	switch {
	case systolic < 120 && diastolic < 80:
		return PressureNormal
	case systolic < 130 && diastolic < 80:
		return PressureElevated
	case systolic < 140 || diastolic < 90:
		return PressurePreHypertense
	default:
		return PressureHypertensive
	}
}

func intPtr(n int) *int { return &n }
