package handler

import "github.com/Ekta-2312/Copy-Innovate-Backend/internal/service"

type Handlers struct {
	Auth        *AuthHandler
	User        *UserHandler
	Hospital    *HospitalHandler
	Donor       *DonorHandler
	Request     *RequestHandler
	Location    *LocationHandler
	Fulfillment *FulfillmentHandler
	Donation    *DonationHandler
	Document    *DocumentHandler
	Dashboard   *DashboardHandler
	Settings    *SettingsHandler
	Audit       *AuditHandler
	Public      *PublicHandler
	Stream      *StreamHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(services.Auth),
		User:        NewUserHandler(services.User),
		Hospital:    NewHospitalHandler(services.Hospital, services.Document),
		Donor:       NewDonorHandler(services.Donor),
		Request:     NewRequestHandler(services.Request, services.Donation, services.Location),
		Location:    NewLocationHandler(services.Location),
		Fulfillment: NewFulfillmentHandler(services.Fulfillment),
		Donation:    NewDonationHandler(services.Donation),
		Document:    NewDocumentHandler(services.Document),
		Dashboard:   NewDashboardHandler(services.Dashboard, services.Audit),
		Settings:    NewSettingsHandler(services.Settings),
		Audit:       NewAuditHandler(services.Audit),
		Public:      NewPublicHandler(services.Request, services.Location),
		Stream:      NewStreamHandler(services.Hub),
	}
}
