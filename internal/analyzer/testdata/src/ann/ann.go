package ann

// Marker keeps the import used.
type Marker struct{}
