package bot

// Reply texts. WhatsApp renders *text* as bold.

const msgHelp = "Comandos disponibles:\n\n" +
	"*gasto <monto> <categoria> <detalle>*\n" +
	"  Registrar un gasto en COP\n" +
	"  Ej: gasto 50000 alimentacion almuerzo\n\n" +
	"*gasto <monto> USD <categoria> <detalle>*\n" +
	"  Registrar un gasto en dolares\n" +
	"  Ej: gasto 20 USD tecnologia hosting\n\n" +
	"*ingreso <monto> <categoria> <detalle>*\n" +
	"  Registrar un ingreso\n" +
	"  Ej: ingreso 3000000 salario mensual\n\n" +
	"*tope <monto>*\n" +
	"  Definir tope mensual en COP\n" +
	"  Ej: tope 2000000\n\n" +
	"*estado*\n" +
	"  Ver resumen del mes (gastado, % y disponible)\n\n" +
	"*ayuda*\n" +
	"  Ver este mensaje"

const msgUnknown = "No entendi el comando. Escribe *ayuda* para ver los comandos disponibles."

const msgGastoUsage = "Formato: *gasto <monto> <categoria> <detalle>*\n" +
	"Ejemplo: gasto 50000 alimentacion almuerzo\n" +
	"Para USD: gasto 20 USD tecnologia hosting"

const msgGastoAmount = "El monto debe ser un numero. Ejemplo: *gasto 50000 alimentacion almuerzo*"

const msgIngresoUsage = "Formato: *ingreso <monto> <categoria> <detalle>*\n" +
	"Ejemplo: ingreso 3000000 salario mensual"

const msgIngresoAmount = "El monto debe ser un numero. Ejemplo: *ingreso 3000000 salario mensual*"

const msgTopeAmount = "El monto debe ser un numero. Ejemplo: *tope 2000000*"

const msgTopeUnset = "No tienes un tope mensual. Usa: *tope <monto>*\n" +
	"Ejemplo: tope 2000000"
