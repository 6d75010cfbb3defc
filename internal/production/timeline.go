package production

// Step is one stage of an ORC deployment shown on the implementation
// timeline.
type Step struct {
	Title  string `json:"title"`
	Weeks  string `json:"weeks"`
	Detail string `json:"detail"`
}

// Steps returns the deployment stages in order.
func Steps() []Step {
	return []Step{
		{Title: "Audyt energetyczny", Weeks: "1-2 tyg.", Detail: "Pomiar strumieni ciepła odpadowego i profilu zużycia energii."},
		{Title: "Projekt i dobór turbiny", Weeks: "3-6 tyg.", Detail: "Dobór modułu ORC i integracja z istniejącą instalacją."},
		{Title: "Dostawa i montaż", Weeks: "7-14 tyg.", Detail: "Prefabrykowany moduł, montaż bez zatrzymywania produkcji."},
		{Title: "Uruchomienie", Weeks: "15-16 tyg.", Detail: "Rozruch, odbiory i przekazanie zdalnego monitoringu."},
	}
}
