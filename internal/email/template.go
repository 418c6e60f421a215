package email

import "strings"

// linkTemplate es el cuerpo HTML para correos con botón de acción. Los
// marcadores [URL], [TITLE], [CONTENT] y [BTN_NAME] se sustituyen por
// contenido concreto antes del envío.
const linkTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>[TITLE]</title>
</head>
<body style="font-family: system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, 'Open Sans', 'Helvetica Neue', sans-serif;padding: 2rem;height: auto;">
    <main style="background: #FFFFFF;">
        <div>
            <h1 style="color: #202123;font-size: 32px;line-height: 40px;">[TITLE]</h1>
            <p style="color: #353740;font-size: 16px;line-height: 24px;margin-bottom: 1.8rem;">[CONTENT]</p>
            <a href="[URL]" style="display: inline-block;background: #10A37F;color: #FFFFFF;font-size: 16px;line-height: 24px;padding: 12px 24px;border-radius: 4px;text-decoration: none;">[BTN_NAME]</a>
        </div>
    </main>
</body>
</html>`

// otpTemplate es el cuerpo HTML para correos con código OTP.
const otpTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>OTP from GE CoPilot</title>
</head>
<body style="font-family: system-ui, -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Oxygen, Ubuntu, Cantarell, 'Open Sans', 'Helvetica Neue', sans-serif;padding: 2rem;height: auto;">
    <main style="background: #FFFFFF;">
        <div>
            <h1 style="color: #202123;font-size: 32px;line-height: 40px;">Your OTP is: [OTP]</h1>
            <p style="color: #353740;font-size: 16px;line-height: 24px;margin-bottom: 1.8rem;">Use this OTP to proceed with your action.</p>
        </div>
    </main>
</body>
</html>`

func renderLinkEmail(url, title, content, btnName string) string {
	html := linkTemplate
	html = strings.ReplaceAll(html, "[URL]", url)
	html = strings.ReplaceAll(html, "[TITLE]", title)
	html = strings.ReplaceAll(html, "[CONTENT]", content)
	html = strings.ReplaceAll(html, "[BTN_NAME]", btnName)
	return html
}

func renderOTPEmail(code string) string {
	return strings.ReplaceAll(otpTemplate, "[OTP]", code)
}
