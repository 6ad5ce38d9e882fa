package domain

// StatusDisplay carries the UI presentation metadata for a status.
type StatusDisplay struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusDisplay = map[Status]StatusDisplay{
	StatusPending:     {Label: "Pending", Color: "gray"},
	StatusConfirmed:   {Label: "Confirmed", Color: "blue"},
	StatusProcessing:  {Label: "Processing", Color: "purple"},
	StatusReadyToPack: {Label: "Ready to Pack", Color: "yellow"},
	StatusPacked:      {Label: "Packed", Color: "green"},
	StatusShipped:     {Label: "Shipped", Color: "blue"},
	StatusDelivered:   {Label: "Delivered", Color: "green"},
	StatusCancelled:   {Label: "Cancelled", Color: "red"},
	StatusReturned:    {Label: "Returned", Color: "orange"},
	StatusRefunded:    {Label: "Refunded", Color: "red"},
	StatusOnHold:      {Label: "On Hold", Color: "orange"},
	StatusDisputed:    {Label: "Disputed", Color: "red"},
	StatusError:       {Label: "Error", Color: "red"},
}

// Display returns presentation metadata for the status, with a neutral
// fallback for unknown values.
func (s Status) Display() StatusDisplay {
	if d, ok := statusDisplay[s]; ok {
		return d
	}
	return StatusDisplay{Label: string(s), Color: "gray"}
}
