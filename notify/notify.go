// Package notify holds the storefront's user-facing toasts.
package notify

import "fmt"

type Level string

const (
	Success Level = "success"
	Info    Level = "info"
	Warning Level = "warning"
	Error   Level = "error"
)

// Toast is a transient message for the user. ID lets the page replace
// an earlier toast of the same kind instead of stacking a new one.
type Toast struct {
	Level   Level  `json:"level"`
	ID      string `json:"id,omitempty"`
	Message string `json:"message"`
}

func QuantityTooLow() *Toast {
	return &Toast{Level: Error, ID: "quantity", Message: "O produto precisa ter uma quantidade maior que zero"}
}

func StockExceeded() *Toast {
	return &Toast{Level: Info, ID: "stock", Message: "Quantidade em estoque excedida"}
}

func Added(quantity int, name string) *Toast {
	return &Toast{Level: Success, ID: "add-cart", Message: fmt.Sprintf("Adicionado %d itens: %s ao carrinho", quantity, name)}
}

func Removed(name string) *Toast {
	return &Toast{Level: Info, ID: "remove-cart", Message: "Removido: " + name}
}

func Updated(name string, quantity int) *Toast {
	return &Toast{Level: Info, ID: "update-cart", Message: fmt.Sprintf("Atualizado: %s (x%d)", name, quantity)}
}

func Cleared() *Toast {
	return &Toast{Level: Warning, ID: "clear-cart", Message: "Carrinho limpo."}
}

func LoginRequired() *Toast {
	return &Toast{Level: Info, ID: "login", Message: "Faça login para finalizar seu pedido."}
}

func FixFields() *Toast {
	return &Toast{Level: Error, ID: "checkout", Message: "Corrija os campos destacados."}
}

func OrderSent() *Toast {
	return &Toast{Level: Success, ID: "checkout", Message: "Pedido enviado com sucesso!"}
}

// OrderFailedMessage is shown when the backend gives no reason.
const OrderFailedMessage = "Erro ao enviar pedido. Tente novamente."

func OrderFailed(msg string) *Toast {
	if msg == "" {
		msg = OrderFailedMessage
	}
	return &Toast{Level: Error, ID: "checkout", Message: msg}
}

func Welcome(name string) *Toast {
	return &Toast{Level: Success, ID: "login", Message: "Bem-vindo(a), " + name + "!"}
}

func LoggedOut() *Toast {
	return &Toast{Level: Info, ID: "login", Message: "Você saiu da sua conta."}
}
