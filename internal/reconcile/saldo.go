package reconcile

// Row is the flattened per-pallet-type output of a ledger. Saldo is the
// carrier's net debt to the pallet pool, accrued only at pickup:
// PickupGiven - PickupReceived. Delivery figures are reported alongside but
// never enter the saldo.
type Row struct {
	PalletType       PalletType `json:"pallet_type"`
	PickupReceived   int        `json:"pickup_received"`
	PickupGiven      int        `json:"pickup_given"`
	DeliveryGiven    int        `json:"delivery_given"`
	DeliveryReceived int        `json:"delivery_received"`
	Saldo            int        `json:"saldo"`
}

// Saldo computes the carrier balance for a pickup pair.
func Saldo(pickupGiven, pickupReceived int) int {
	return pickupGiven - pickupReceived
}

// ComputeRows produces one row per pallet type seen on pickup or delivery
// stops, in canonical pallet order. Types whose four figures are all zero
// are omitted. Handoff stops contribute no columns.
func ComputeRows(stops []Stop) []Row {
	var pickupReceived, pickupGiven, deliveryGiven, deliveryReceived []Movements

	for _, s := range stops {
		switch s.Role {
		case RolePickup:
			pickupReceived = append(pickupReceived, s.Received)
			pickupGiven = append(pickupGiven, s.Given)
		case RoleDelivery:
			deliveryGiven = append(deliveryGiven, s.Given)
			deliveryReceived = append(deliveryReceived, s.Received)
		}
	}

	pr := Sum(pickupReceived...)
	pg := Sum(pickupGiven...)
	dg := Sum(deliveryGiven...)
	dr := Sum(deliveryReceived...)

	types := Sum(pr, pg, dg, dr).Types()
	rows := make([]Row, 0, len(types))

	for _, t := range types {
		row := Row{
			PalletType:       t,
			PickupReceived:   pr.Quantity(t),
			PickupGiven:      pg.Quantity(t),
			DeliveryGiven:    dg.Quantity(t),
			DeliveryReceived: dr.Quantity(t),
		}
		if row.PickupReceived == 0 && row.PickupGiven == 0 &&
			row.DeliveryGiven == 0 && row.DeliveryReceived == 0 {
			continue
		}
		row.Saldo = Saldo(row.PickupGiven, row.PickupReceived)
		rows = append(rows, row)
	}

	return rows
}
