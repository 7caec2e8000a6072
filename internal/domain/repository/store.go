package repository

// Store agrupa los repositorios atados a una misma conexión o transacción.
type Store struct {
	Products     ProductRepository
	Locations    LocationRepository
	Levels       StockLevelRepository
	Transactions StockTransactionRepository
	Lots         CostLotRepository
	BOMs         BOMRepository
}
