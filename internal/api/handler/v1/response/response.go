package response

import "github.com/stockbook/inventory-api/internal/domain"

type LoginResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type Message struct {
	Message string `json:"message"`
}

type BulkDeleteResponse struct {
	Message      string `json:"message"`
	DeletedCount int64  `json:"deleted_count"`
}

type CompleteAllResponse struct {
	Message        string `json:"message"`
	CompletedCount int    `json:"completed_count"`
}

type PendingItemsResponse struct {
	Bill  domain.Bill       `json:"bill"`
	Items []domain.BillItem `json:"items"`
}

type Health struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Redis    string `json:"redis,omitempty"`
}
