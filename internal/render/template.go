package render

// certificateTemplate is the document layout. Kept as a single HTML page so
// the output can be archived or converted to PDF by downstream tooling.
const certificateTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8"/>
    <title>Certificate</title>
    <style>
        body {
            font-family: 'Nunito Sans', sans-serif;
        }
        .certificate {
            max-width: 800px;
            margin: 10px;
            border: 10px solid #507091;
            border-radius: 10px;
            padding: 50px;
        }
        .header {
            font-family: 'Libre Baskerville', serif;
            text-align: center;
        }
        .certificate-header {
            font-size: 50px;
            text-transform: uppercase;
            display: block;
        }
        .certificate-subheader {
            font-size: 25px;
            text-transform: uppercase;
        }
        .certificate-receiver {
            display: block;
            font-family: 'Libre Baskerville', serif;
            font-weight: bold;
            text-decoration: underline;
            font-size: 30px;
            text-align: center;
            margin: 10px 0;
        }
        .content {
            margin-top: 30px;
            text-align: center;
        }
        .issuer {
            padding: 5px;
            display: inline-block;
            border-bottom: 2px solid #507091;
        }
        .certificate-course-name {
            font-weight: bold;
            font-size: 25px;
            text-transform: capitalize;
            font-family: 'Libre Baskerville', serif;
            text-align: center;
            display: block;
            margin: 10px 0;
        }
        .my-footer {
            text-align: end;
            margin-top: 30px;
            display: block;
        }
        .issuer-container {
            display: inline-block;
            text-align: center;
        }
        .issuer-label {
            display: block;
            margin-top: 5px;
            font-family: 'Libre Baskerville', serif;
        }
    </style>
</head>
<body>
<div class="certificate">
    <div class="header">
        <span class="certificate-header">Certificate</span>
        <span class="certificate-subheader">of Completion</span>
    </div>
    <div class="content">
        <div>This is to certify that</div>
        <div class="certificate-receiver">{{.FirstName}} {{.LastName}}</div>
        <div>has successfully completed the course</div>
        <div class="certificate-course-name">{{.CertName}}</div>
        <div>Certificate valid until {{.ValidUntil}}</div>
    </div>
    <div class="my-footer">
        <div class="issuer-container">
            <div class="issuer">
                <span>{{.Issuer}}</span>
            </div>
            <span class="issuer-label">Issuer</span>
        </div>
    </div>
</div>
</body>
</html>
`
