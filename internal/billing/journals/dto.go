package journals

type CreateJournalRequest struct {
	Code         string `json:"code" validate:"required,max=50"`
	Name         string `json:"name" validate:"required,max=200"`
	Type         string `json:"type" validate:"required,oneof=sale purchase"`
	MaxDocuments int64  `json:"max_documents" validate:"gte=0"`
}

type UpdateJournalRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	MaxDocuments *int64  `json:"max_documents,omitempty" validate:"omitempty,gte=0"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=active closed"`
}

type ListJournalsRequest struct {
	CompanyID int64
	Type      string
	Status    string
	Page      int
	PerPage   int
}
