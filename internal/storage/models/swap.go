package models

// SwapRecord is one broadcast contract execution and its outcome. Amounts
// are stored as numeric strings to keep uint128 precision. Failed executions
// have no tx hash; uniqueness applies only to broadcast rows.
type SwapRecord struct {
	BaseModel
	TxHash        string `gorm:"not null;type:varchar(64);index:idx_swaps_tx_hash,unique,where:tx_hash <> ''"`
	TaskName      string `gorm:"not null;type:varchar(100)"`
	Market        string `gorm:"not null;type:varchar(20)"`
	Operation     string `gorm:"not null;type:varchar(40)"`
	Collection    string `gorm:"index;not null;type:varchar(64)"`
	PoolID        uint64 `gorm:"index"`
	WalletAddress string `gorm:"index;not null;type:varchar(64)"`
	NftTokenIDs   string `gorm:"type:text"` // comma-joined token ids
	Amount        string `gorm:"type:numeric(40,0)"`
	Denom         string `gorm:"type:varchar(20)"`
	Status        string `gorm:"not null;type:varchar(20)"`
	ErrorMessage  string `gorm:"type:text"`
	Height        int64  `gorm:"index"`
}
