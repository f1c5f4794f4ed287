package rag

import "fmt"

// Persona is a named configuration of system instructions and tone used
// when building a generation prompt. Adding a persona means adding a
// variant here and an entry in personaInstructions; there is no runtime
// registry.
type Persona int

const (
	PersonaFuoco Persona = iota
	PersonaSage
	PersonaCoach
)

// String returns the canonical lowercase name of the persona.
func (p Persona) String() string {
	switch p {
	case PersonaSage:
		return "sage"
	case PersonaCoach:
		return "coach"
	default:
		return "fuoco"
	}
}

// ParsePersona maps a configuration string to a Persona.
func ParsePersona(name string) (Persona, error) {
	switch name {
	case "", "fuoco":
		return PersonaFuoco, nil
	case "sage":
		return PersonaSage, nil
	case "coach":
		return PersonaCoach, nil
	default:
		return PersonaFuoco, fmt.Errorf("unknown persona %q", name)
	}
}

// personaInstructions is the statically-known table of system instructions,
// one entry per Persona variant.
var personaInstructions = map[Persona]string{
	PersonaFuoco: "Você é o Fuoco, um assistente pessoal de produtividade e finanças. " +
		"Responda em português de forma breve, direta e amigável. " +
		"Use o conhecimento fornecido quando for relevante para a pergunta.",
	PersonaSage: "Você é o Sage, um mentor calmo e reflexivo. " +
		"Responda em português com profundidade, trazendo contexto e perguntas que ajudem o usuário a pensar.",
	PersonaCoach: "Você é o Coach, um treinador enérgico e motivador. " +
		"Responda em português com frases curtas, foco em ação e próximos passos concretos.",
}

// Instructions returns the system instruction block for the persona.
func (p Persona) Instructions() string {
	if s, ok := personaInstructions[p]; ok {
		return s
	}
	return personaInstructions[PersonaFuoco]
}
