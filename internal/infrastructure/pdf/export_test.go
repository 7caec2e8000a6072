package pdf

// FormatAmount expone el formateo de montos a los tests externos.
var FormatAmount = formatAmount
