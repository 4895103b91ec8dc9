package constants

const (
	ServiceSearch   = "search-service"
	ServiceProvider = "provider-service"

	HotelSearchRequested = "hotel-search-requested"
	HotelSearchCompleted = "hotel-search-completed"

	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)
