package models

// Response is the envelope shared by every endpoint.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Errors  []FieldError `json:"errors,omitempty"`
}

func OK(message string, data interface{}) Response {
	return Response{Success: true, Message: message, Data: data}
}

func Fail(message string, errs []FieldError) Response {
	return Response{Success: false, Message: message, Errors: errs}
}

type PropertyStats struct {
	Overview StatsOverview `json:"overview"`
	ByType   []TypeStats   `json:"byType"`
}

type StatsOverview struct {
	TotalProperties     int64   `json:"totalProperties" bson:"totalProperties"`
	AvailableProperties int64   `json:"availableProperties" bson:"availableProperties"`
	SoldProperties      int64   `json:"soldProperties" bson:"soldProperties"`
	PendingProperties   int64   `json:"pendingProperties" bson:"pendingProperties"`
	RentedProperties    int64   `json:"rentedProperties" bson:"rentedProperties"`
	AveragePrice        float64 `json:"averagePrice" bson:"averagePrice"`
	TotalValue          float64 `json:"totalValue" bson:"totalValue"`
	MinPrice            float64 `json:"minPrice" bson:"minPrice"`
	MaxPrice            float64 `json:"maxPrice" bson:"maxPrice"`
}

type TypeStats struct {
	Type         string  `json:"_id" bson:"_id"`
	Count        int64   `json:"count" bson:"count"`
	AveragePrice float64 `json:"averagePrice" bson:"averagePrice"`
}
