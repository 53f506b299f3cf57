package request

// ByIDRequest is a common struct for endpoints that require a UUID path parameter.
type ByIDRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}
