package checkout

import (
	"net/mail"
	"sort"
	"strings"

	"github.com/Lixing-Zhang/vintage-drops/internal/models"
)

// ShippingInfo is the first checkout step.
type ShippingInfo struct {
	Name    string                 `json:"name"`
	Email   string                 `json:"email"`
	Phone   string                 `json:"phone"`
	Address models.ShippingAddress `json:"shipping_address"`
}

// ValidationErrors maps a field name to what is wrong with it.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return "invalid shipping info: " + strings.Join(fields, ", ")
}

// Validate checks that every required field is present. The street address
// is not needed for pickup point delivery, the locker id is.
func Validate(info ShippingInfo) ValidationErrors {
	errs := ValidationErrors{}
	required := func(field, value string) {
		if strings.TrimSpace(value) == "" {
			errs[field] = "required"
		}
	}

	required("name", info.Name)
	required("email", info.Email)
	required("phone", info.Phone)
	if _, ok := errs["email"]; !ok {
		if _, err := mail.ParseAddress(strings.TrimSpace(info.Email)); err != nil {
			errs["email"] = "invalid email address"
		}
	}

	switch info.Address.Method {
	case models.ShippingPickupPoint:
		required("locker_id", info.Address.LockerID)
	case models.ShippingCourier, "":
		required("street", info.Address.Street)
		required("city", info.Address.City)
		required("postal_code", info.Address.PostalCode)
	default:
		errs["method"] = "unknown shipping method"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// normalize trims the fields and defaults the shipping method to courier.
func normalize(info ShippingInfo) ShippingInfo {
	info.Name = strings.TrimSpace(info.Name)
	info.Email = strings.TrimSpace(info.Email)
	info.Phone = strings.TrimSpace(info.Phone)
	if info.Address.Method == "" {
		info.Address.Method = models.ShippingCourier
	}
	if info.Address.Method == models.ShippingPickupPoint {
		info.Address.Street, info.Address.City, info.Address.PostalCode = "", "", ""
	} else {
		info.Address.LockerID = ""
	}
	return info
}
