package controller

const (
	ChainErrorMessage        = "Error loading blockchain. Make sure the backend server is running."
	HistoryErrorMessage      = "Error loading product history. Make sure the backend server is running."
	SubmitSuccessMessage     = "Transaction added successfully! It will be included in the next block."
	SubmitFallbackMessage    = "Failed to add transaction"
	SubmitUnreachableMessage = "Error connecting to server. Make sure the backend is running."
	MineSuccessMessage       = "Block mined successfully!"
	MineRejectedMessage      = "Error mining block"
	UnreachableMessage       = "Error connecting to server."
	ValidateRejectedMessage  = "Error checking chain validity"
	ProductsRejectedMessage  = "Error loading products"

	MineIdleLabel = "Mine Block"
	MineBusyLabel = "Mining..."
)
