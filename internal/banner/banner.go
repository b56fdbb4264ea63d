package banner

import (
	"repstress/internal/tui/styles"

	"github.com/charmbracelet/lipgloss"
)

func GetString() string {
	renderer := lipgloss.DefaultRenderer()

	style := renderer.NewStyle().
		Foreground(styles.ColorBanner).
		Bold(true)

	ascii := `
    ____             _____ __                      
   / __ \___  ____  / ___// /_________  __________
  / /_/ / _ \/ __ \ \__ \/ __/ ___/ _ \/ ___/ ___/
 / _, _/  __/ /_/ /___/ / /_/ /  /  __(__  |__  ) 
/_/ |_|\___/ .___//____/\__/_/   \___/____/____/  
          /_/                                     `

	return "\n" + style.Render(ascii) + "\n"
}
