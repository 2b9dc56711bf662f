package models

// Professor defines the professor model based on the 'professors' table
type Professor struct {
	ID       int64  `json:"id" db:"id"`
	FullName string `json:"fullName" db:"full_name"`
	Title    string `json:"title" db:"title"`
}

// Student defines the student model based on the 'students' table
type Student struct {
	ID         int64  `json:"id" db:"id"`
	Identifier string `json:"identifier" db:"identifier"`
	FullName   string `json:"fullName" db:"full_name"`
	CareerID   int64  `json:"careerId" db:"career_id"`
}

// Career groups curriculum versions and offerings under one degree program
type Career struct {
	ID   int64  `json:"id" db:"id"`
	Code string `json:"code" db:"code"`
	Name string `json:"name" db:"name"`
}
