package models

// FleetOverview is the dashboard headline for the whole fleet.
type FleetOverview struct {
	TotalBuses       int     `db:"total_buses" json:"totalBuses"`
	ActiveBuses      int     `db:"active_buses" json:"activeBuses"`
	MaintenanceBuses int     `db:"maintenance_buses" json:"maintenanceBuses"`
	RetiredBuses     int     `db:"retired_buses" json:"retiredBuses"`
	SchoolOwned      int     `db:"school_owned" json:"schoolOwned"`
	PrivateOwned     int     `db:"private_owned" json:"privateOwned"`
	TotalDrivers     int     `db:"total_drivers" json:"totalDrivers"`
	ActiveDrivers    int     `db:"active_drivers" json:"activeDrivers"`
	ActiveStudents   int     `db:"active_students" json:"activeStudents"`
	TotalRoutes      int     `db:"total_routes" json:"totalRoutes"`
	MonthlyExpenses  float64 `db:"monthly_expenses" json:"monthlyExpenses"`
	FuelStock        float64 `db:"-" json:"fuelStock"`
	UreaStock        float64 `db:"-" json:"ureaStock"`
}
