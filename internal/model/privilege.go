package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "book:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Book"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// User management
	{Code: "user:view", Name: "View User"},
	{Code: "user:create", Name: "Create User"},
	{Code: "user:update", Name: "Update User"},
	{Code: "user:delete", Name: "Delete User"},
	{Code: "user:update_privilege", Name: "Update User Privileges"},
	// Book catalog
	{Code: "book:view", Name: "View Book"},
	{Code: "book:create", Name: "Create Book"},
	{Code: "book:update", Name: "Update Book"},
	{Code: "book:delete", Name: "Delete Book"},
	// Ledger operations
	{Code: "price:update", Name: "Update Book Price"},
	{Code: "stock:update", Name: "Update Book Stock"},
	// Transaction management
	{Code: "transaction:view", Name: "View Transaction"},
	{Code: "transaction:create", Name: "Create Transaction"},
	// Dashboard
	{Code: "dashboard:view", Name: "View Dashboard"},
}
