package enums

// ShippingMethod enumerates the delivery options a shopper can pick.
type ShippingMethod string

const (
	ShippingMethodStandard ShippingMethod = "standard"
	ShippingMethodExpress  ShippingMethod = "express"
)

func (s ShippingMethod) IsValid() bool {
	switch s {
	case ShippingMethodStandard, ShippingMethodExpress:
		return true
	}
	return false
}
