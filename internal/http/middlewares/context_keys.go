package middlewares

const (
	CtxRequestID = "request_id"
	CtxUserID    = "session.userID"
	CtxUserRole  = "session.role"
)
