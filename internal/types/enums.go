package types

// User roles
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Requirement types
const (
	ReqForm      = "form"
	ReqAgreement = "agreement"
	ReqPayment   = "payment"
	ReqReview    = "review"
	ReqApproval  = "approval"
	ReqFeedback  = "feedback"
	ReqMonitor   = "monitor"
	ReqCheck     = "check"
	ReqConfirm   = "confirm"
	ReqDownload  = "download"
	ReqLaunch    = "launch"
)

// Phase tracking status values
const (
	PhasePending    = "pending"
	PhaseInProgress = "in_progress"
	PhaseCompleted  = "completed"
)

// Proof session status values
const (
	ProofCreated  = "created"
	ProofReady    = "ready"
	ProofApproved = "approved"
	ProofRejected = "rejected"
)

// Override request status values
const (
	OverridePending  = "pending"
	OverrideApproved = "approved"
	OverrideRejected = "rejected"
)

// Approval decision values
const (
	DecisionApproved = "approved"
	DecisionRejected = "rejected"
)

// Invoice status values
const (
	InvoiceDraft = "draft"
	InvoiceSent  = "sent"
	InvoicePaid  = "paid"
	InvoiceVoid  = "void"
)

// File status values
const (
	FileActive   = "active"
	FileArchived = "archived"
)

// Color modes reported by image introspection
const (
	ColorGrayscale = "Grayscale"
	ColorRGB       = "RGB"
	ColorCMYK      = "CMYK"
)
