package mocks

//go:generate mockgen -destination=./mock_strategy.go -package=mocks github.com/rxtech-lab/ndx-rsi/internal/strategy Strategy
//go:generate mockgen -destination=./mock_bar_source.go -package=mocks github.com/rxtech-lab/ndx-rsi/internal/datasource BarSource
//go:generate mockgen -destination=./mock_notifier.go -package=mocks github.com/rxtech-lab/ndx-rsi/internal/notify Notifier
