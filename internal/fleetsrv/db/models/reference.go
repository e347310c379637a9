package models

// Reference data shared by all tenants.

type Industry struct {
	ID   int    `db:"id" json:"id"`
	Code string `db:"code" json:"code"`
	Name string `db:"name" json:"name"`
}

type FleetCategory struct {
	ID         int    `db:"id" json:"id"`
	IndustryID int    `db:"industry_id" json:"industryId"`
	Code       string `db:"code" json:"code"`
	Name       string `db:"name" json:"name"`
	IsActive   bool   `db:"is_active" json:"isActive"`
}

type EquipmentType struct {
	ID              int    `db:"id" json:"id"`
	IndustryID      int    `db:"industry_id" json:"industryId"`
	FleetCategoryID int    `db:"fleet_category_id" json:"fleetCategoryId"`
	Code            string `db:"code" json:"code"`
	Name            string `db:"name" json:"name"`
	MeterMode       string `db:"meter_mode" json:"meterMode"`
	HasVIN          bool   `db:"has_vin" json:"hasVin"`
	IsActive        bool   `db:"is_active" json:"isActive"`
}
