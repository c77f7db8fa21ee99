package authorizenet

import "github.com/beevik/etree"

// paymentProfileElement builds the fragment shared by profile creation and
// the payment-profile operations:
//
//	<name>
//	  <billTo>...</billTo>            (only when billing is non-empty)
//	  <payment><creditCard>...</creditCard></payment>
//	</name>
//
// Only keys present in the maps are written, in the fixed field order.
// Values are not validated; the gateway does that.
func paymentProfileElement(name string, billing, creditCard Fields) *etree.Element {
	profile := etree.NewElement(name)

	if len(billing) > 0 {
		appendFields(profile.CreateElement("billTo"), BillingFields, billing)
	}

	payment := profile.CreateElement("payment")
	appendFields(payment.CreateElement("creditCard"), CreditCardFields, creditCard)

	return profile
}

func appendFields(parent *etree.Element, order []string, values Fields) {
	for _, key := range order {
		if value, ok := values[key]; ok {
			addText(parent, key, value)
		}
	}
}

// collectFields is the reverse of appendFields: it reads the recognized
// children of el. A child without text maps to "".
func collectFields(el *etree.Element, order []string) Fields {
	out := Fields{}
	for _, c := range el.ChildElements() {
		for _, key := range order {
			if c.Tag == key {
				out[key] = c.Text()
				break
			}
		}
	}
	return out
}
