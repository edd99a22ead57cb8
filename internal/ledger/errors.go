package ledger

import "errors"

// Validation errors abort the operation with no state change.
var (
	ErrEmptyName             = errors.New("nome não pode ser vazio")
	ErrDuplicateName         = errors.New("já existe um registo com este nome")
	ErrDuplicateBarcode      = errors.New("código de barras já associado a outro produto")
	ErrInvalidAmount         = errors.New("valor inválido")
	ErrInsufficientCash      = errors.New("saldo insuficiente para esta saída")
	ErrInvalidCreditCustomer = errors.New("selecione um cliente válido (não \"Cliente Balcão\") para venda não paga")
	ErrProtectedEntity       = errors.New("não é possível excluir o registo padrão")
	ErrReferenced            = errors.New("registo em uso no histórico de vendas")
	ErrEmptyCart             = errors.New("carrinho vazio")
	ErrCartIndex             = errors.New("item do carrinho inexistente")
	ErrNotFound              = errors.New("registo não encontrado")
	ErrNotASale              = errors.New("transação não é uma venda")
	ErrSaleReversed          = errors.New("venda já estornada")
	ErrSaleNotUnpaid         = errors.New("venda não está pendente de pagamento")
	ErrInvalidStatus         = errors.New("estado inválido")
	ErrInvalidDiscount       = errors.New("desconto inválido")
	ErrInvalidDate           = errors.New("data inválida")
	ErrInvalidPeriod         = errors.New("período de relatório desconhecido")
	ErrInvalidSnapshot       = errors.New("o ficheiro não parece ser um backup válido")
	ErrInvalidTheme          = errors.New("tema inválido")
	ErrNoPendingAction       = errors.New("nenhuma ação pendente de confirmação")
	ErrUnknownAction         = errors.New("ação desconhecida")
)

// ErrPersist wraps storage failures. The in-memory change that triggered the
// save is kept; only durability is lost.
var ErrPersist = errors.New("não foi possível guardar os dados")

// ErrCorruptState is returned by Load when stored data could not be decoded
// and defaults were used instead.
var ErrCorruptState = errors.New("dados guardados corrompidos, a utilizar valores padrão")
