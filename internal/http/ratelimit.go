package httpapi

import (
	"github.com/bhumeshparihar/e-matdaan-voting-system/internal/ratelimit/models"
)

// RateLimitClasses assigns the expensive public routes their own budgets.
// Every other route falls under models.ClassDefault.
var RateLimitClasses = map[string]models.EndpointClass{
	"/api/register":   models.ClassBiometric,
	"/api/login_face": models.ClassBiometric,
	"/api/send_otp":   models.ClassOTP,
	"/api/verify_otp": models.ClassOTP,
}
